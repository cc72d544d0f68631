// Package catalog holds the fixed set of semiconductor-manufacturing job
// postings surfaced to users. The catalog is curated, not stored; only saves
// and applications derived from it are persisted.
package catalog

import "github.com/pathforge/platform/internal/app/domain/opportunity"

var opportunities = []opportunity.Opportunity{
	{
		ID:            "1",
		Title:         "Semiconductor Equipment Technician",
		Company:       "TSMC Arizona",
		Location:      "Phoenix, AZ",
		Salary:        "$68,000 - $82,000",
		CertRequired:  "CMfgT + NIMS Level 1",
		TimeToQualify: "8 weeks",
	},
	{
		ID:            "2",
		Title:         "CNC Machinist - Tool & Die",
		Company:       "Intel Corporation",
		Location:      "Columbus, OH",
		Salary:        "$62,000 - $78,000",
		CertRequired:  "NIMS CNC Milling",
		TimeToQualify: "6 weeks",
	},
	{
		ID:            "3",
		Title:         "Metrology Technician",
		Company:       "Samsung Austin",
		Location:      "Taylor, TX",
		Salary:        "$58,000 - $72,000",
		CertRequired:  "CMfgA",
		TimeToQualify: "4 weeks",
	},
	{
		ID:            "4",
		Title:         "Cleanroom Process Technician",
		Company:       "Micron Technology",
		Location:      "Syracuse, NY",
		Salary:        "$55,000 - $68,000",
		CertRequired:  "CMfgA",
		TimeToQualify: "3 weeks",
	},
}

// All returns every posting in display order. The slice is a copy.
func All() []opportunity.Opportunity {
	out := make([]opportunity.Opportunity, len(opportunities))
	copy(out, opportunities)
	return out
}

// ByID returns the posting with the given id.
func ByID(id string) (opportunity.Opportunity, bool) {
	for _, o := range opportunities {
		if o.ID == id {
			return o, true
		}
	}
	return opportunity.Opportunity{}, false
}
