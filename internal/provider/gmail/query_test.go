package gmail

import "testing"

func TestFiltersQuery(t *testing.T) {
	tests := []struct {
		name string
		f    Filters
		want string
	}{
		{"empty", Filters{}, ""},
		{"older than", Filters{OlderThan: "30d"}, "older_than:30d"},
		{
			"date range wins over older than",
			Filters{OlderThan: "30d", AfterDate: "2024/01/01", BeforeDate: "2024/06/30"},
			"after:2024/01/01 before:2024/06/30",
		},
		{"after only", Filters{AfterDate: "2024/01/01"}, "after:2024/01/01"},
		{"size", Filters{LargerThan: "5M"}, "larger:5M"},
		{"category", Filters{Category: "promotions"}, "category:promotions"},
		{"sender", Filters{Sender: "shop.example"}, "from:shop.example"},
		{"label", Filters{Label: "newsletters"}, "label:newsletters"},
		{
			"combined order",
			Filters{OlderThan: "90d", LargerThan: "1M", Category: "updates", Sender: "a@b.com"},
			"older_than:90d larger:1M category:updates from:a@b.com",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.f.Query(); got != tt.want {
				t.Errorf("Query() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestScanQuery(t *testing.T) {
	if got := ScanQuery(Filters{}); got != BaseQuery {
		t.Errorf("ScanQuery(empty) = %q, want base query", got)
	}
	got := ScanQuery(Filters{OlderThan: "30d"})
	want := "(" + BaseQuery + ") older_than:30d"
	if got != want {
		t.Errorf("ScanQuery() = %q, want %q", got, want)
	}
}
