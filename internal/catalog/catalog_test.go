package catalog

import "testing"

func TestCatalogContents(t *testing.T) {
	jobs := All()
	if len(jobs) != 4 {
		t.Fatalf("expected 4 postings, got %d", len(jobs))
	}

	companies := []string{"TSMC Arizona", "Intel Corporation", "Samsung Austin", "Micron Technology"}
	for i, want := range companies {
		if jobs[i].Company != want {
			t.Fatalf("posting %d: expected company %q, got %q", i+1, want, jobs[i].Company)
		}
	}
}

func TestAllReturnsCopy(t *testing.T) {
	jobs := All()
	jobs[0].Company = "changed"

	if All()[0].Company != "TSMC Arizona" {
		t.Fatal("All must not expose the backing slice")
	}
}

func TestByID(t *testing.T) {
	job, ok := ByID("3")
	if !ok {
		t.Fatal("expected posting 3")
	}
	if job.Title != "Metrology Technician" {
		t.Fatalf("unexpected posting: %+v", job)
	}

	if _, ok := ByID("999"); ok {
		t.Fatal("expected miss for unknown id")
	}
}
