package scrape

import (
	"fmt"
	"strings"
	"testing"
)

const listingPage = `<html><body>
<table class="tw-min-w-full">
  <tbody class="tw-divide-y">
    <tr>
      <td class="tw-py-5"><div class="tw-font-medium tw-text-gray-900">Stanford University</div></td>
      <td class="tw-py-5"><div class="tw-text-gray-600"><span>Computer Science</span><span class="tw-text-gray-500">PhD</span></div></td>
      <td class="tw-py-5">January 30, 2026</td>
      <td class="tw-py-5"><div class="tw-inline-flex tw-items-center">Accepted on 15 Jan</div></td>
      <td class="tw-py-5"><a href="/result/901234">Open options</a></td>
    </tr>
    <tr>
      <td colspan="5">
        <div class="tw-inline-flex tw-rounded-md tw-px-2">Fall 2026</div>
        <div class="tw-inline-flex tw-rounded-md tw-px-2">International</div>
        <div class="tw-inline-flex tw-rounded-md tw-px-2">GPA 3.85</div>
        <div class="tw-inline-flex tw-rounded-md tw-px-2">GRE 325</div>
        <div class="tw-inline-flex tw-rounded-md tw-px-2">GRE V 162</div>
        <div class="tw-inline-flex tw-rounded-md tw-px-2">GRE AW 4.5</div>
      </td>
    </tr>
    <tr>
      <td colspan="5"><p class="tw-text-gray-500 tw-text-sm">Strong fit with the systems lab.</p></td>
    </tr>
    <tr>
      <td class="tw-py-5"><div class="tw-font-medium tw-text-gray-900">McGill University</div></td>
      <td class="tw-py-5"><div class="tw-text-gray-600"><span>Information Studies</span><span class="tw-text-gray-500">Masters</span></div></td>
      <td class="tw-py-5">January 28, 2026</td>
      <td class="tw-py-5"><div class="tw-inline-flex tw-items-center">Rejected on 27 Jan</div></td>
      <td class="tw-py-5"><a href="/result/901177">Open options</a></td>
    </tr>
  </tbody>
</table>
</body></html>`

func TestParseListingPage(t *testing.T) {
	parser := NewParser()
	entries, skipped, err := parser.Run([]byte(listingPage))

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if skipped != 0 {
		t.Errorf("Expected 0 skipped groups, got: %d", skipped)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got: %d", len(entries))
	}

	first := entries[0]
	if first.Program != "Computer Science, Stanford University" {
		t.Errorf("Expected program 'Computer Science, Stanford University', got: %s", first.Program)
	}
	if first.Degree != "PhD" {
		t.Errorf("Expected degree 'PhD', got: %s", first.Degree)
	}
	if first.DateAdded != "January 30, 2026" {
		t.Errorf("Expected date added 'January 30, 2026', got: %s", first.DateAdded)
	}
	if first.Status != "Accepted on 15 Jan" {
		t.Errorf("Expected status 'Accepted on 15 Jan', got: %s", first.Status)
	}
	if first.URL != "https://www.thegradcafe.com/result/901234" {
		t.Errorf("Expected URL 'https://www.thegradcafe.com/result/901234', got: %s", first.URL)
	}
	if first.Term != "Fall 2026" {
		t.Errorf("Expected term 'Fall 2026', got: %s", first.Term)
	}
	if first.Citizenship != "International" {
		t.Errorf("Expected citizenship 'International', got: %s", first.Citizenship)
	}
	if first.GPA != "GPA 3.85" {
		t.Errorf("Expected GPA 'GPA 3.85', got: %s", first.GPA)
	}
	if first.GRE != "GRE 325" {
		t.Errorf("Expected GRE 'GRE 325', got: %s", first.GRE)
	}
	if first.GREVerbal != "GRE V 162" {
		t.Errorf("Expected GRE verbal 'GRE V 162', got: %s", first.GREVerbal)
	}
	if first.GREAW != "GRE AW 4.5" {
		t.Errorf("Expected GRE AW 'GRE AW 4.5', got: %s", first.GREAW)
	}
	if first.Comment != "Strong fit with the systems lab." {
		t.Errorf("Expected comment 'Strong fit with the systems lab.', got: %s", first.Comment)
	}

	second := entries[1]
	if second.Program != "Information Studies, McGill University" {
		t.Errorf("Expected program 'Information Studies, McGill University', got: %s", second.Program)
	}
	if second.Term != "" {
		t.Errorf("Expected empty term for entry without badge row, got: %s", second.Term)
	}
	if second.GPA != "" {
		t.Errorf("Expected empty GPA for entry without badge row, got: %s", second.GPA)
	}
	if second.GRE != "" || second.GREVerbal != "" || second.GREAW != "" {
		t.Errorf("Expected empty GRE fields for entry without badge row, got: %s/%s/%s", second.GRE, second.GREVerbal, second.GREAW)
	}
	if second.Comment != "" {
		t.Errorf("Expected empty comment for entry without comment row, got: %s", second.Comment)
	}
}

func TestParseSkipsMalformedGroup(t *testing.T) {
	var page strings.Builder
	page.WriteString(`<html><body><table><tbody>`)

	// Orphaned comment row before the first primary row forms a group
	// without substance and must be skipped, not fail the page.
	page.WriteString(`<tr><td colspan="5"><p class="tw-text-gray-500 tw-text-sm">Orphaned comment</p></td></tr>`)

	for i := 0; i < 25; i++ {
		fmt.Fprintf(&page, `<tr>
      <td><div class="tw-font-medium">University %d</div></td>
      <td><div><span>Program %d</span><span>PhD</span></div></td>
      <td>January %d, 2026</td>
      <td><div>Accepted</div></td>
      <td><a href="/result/%d">Open options</a></td>
    </tr>`, i, i, i+1, 100000+i)
	}

	page.WriteString(`</tbody></table></body></html>`)

	parser := NewParser()
	entries, skipped, err := parser.Run([]byte(page.String()))

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(entries) != 25 {
		t.Errorf("Expected 25 entries, got: %d", len(entries))
	}
	if skipped != 1 {
		t.Errorf("Expected 1 skipped group, got: %d", skipped)
	}
}

func TestParseEmptyPage(t *testing.T) {
	parser := NewParser()
	entries, skipped, err := parser.Run([]byte(`<html><body><p>No results found.</p></body></html>`))

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected 0 entries, got: %d", len(entries))
	}
	if skipped != 0 {
		t.Errorf("Expected 0 skipped groups, got: %d", skipped)
	}
}

func TestParseResultLinkFallback(t *testing.T) {
	// Four-cell layout: the result link sits inside the program cell
	// instead of a dedicated fifth cell.
	page := `<html><body><table><tbody>
    <tr>
      <td><div class="tw-font-medium">Cornell University</div></td>
      <td><div><span><a href="/result/774411">Economics</a></span></div></td>
      <td>January 12, 2026</td>
      <td><div>Wait listed on 10 Jan</div></td>
    </tr>
  </tbody></table></body></html>`

	parser := NewParser()
	entries, _, err := parser.Run([]byte(page))

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got: %d", len(entries))
	}
	if entries[0].URL != "https://www.thegradcafe.com/result/774411" {
		t.Errorf("Expected fallback URL 'https://www.thegradcafe.com/result/774411', got: %s", entries[0].URL)
	}
}

func TestParseIgnoresUnrecognizedBadges(t *testing.T) {
	page := `<html><body><table><tbody>
    <tr>
      <td><div class="tw-font-medium">Purdue University</div></td>
      <td><div><span>Statistics</span></div></td>
      <td>January 5, 2026</td>
      <td><div>Interview on 3 Jan</div></td>
      <td><a href="/result/661100">Open options</a></td>
    </tr>
    <tr>
      <td colspan="5">
        <div class="tw-rounded-md tw-px-2">Spring 2026</div>
        <div class="tw-rounded-md tw-px-2">Total comments: 4</div>
        <div class="tw-rounded-md tw-px-2">American</div>
      </td>
    </tr>
  </tbody></table></body></html>`

	parser := NewParser()
	entries, _, err := parser.Run([]byte(page))

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got: %d", len(entries))
	}

	entry := entries[0]
	if entry.Term != "Spring 2026" {
		t.Errorf("Expected term 'Spring 2026', got: %s", entry.Term)
	}
	if entry.Citizenship != "American" {
		t.Errorf("Expected citizenship 'American', got: %s", entry.Citizenship)
	}
	if entry.GPA != "" || entry.GRE != "" {
		t.Errorf("Expected unrecognized badge to be ignored, got GPA: %s, GRE: %s", entry.GPA, entry.GRE)
	}
	if entry.Degree != "" {
		t.Errorf("Expected empty degree for single-span program cell, got: %s", entry.Degree)
	}
}
