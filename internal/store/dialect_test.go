package store

import "testing"

func TestDialectFor(t *testing.T) {
	tests := []struct {
		driver  string
		want    Dialect
		wantErr bool
	}{
		{DriverSQLite, DialectSQLite, false},
		{DriverPostgres, DialectPostgres, false},
		{"postgres", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			got, err := DialectFor(tt.driver)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DialectFor(%q) error = %v, wantErr %v", tt.driver, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("DialectFor(%q) = %q, want %q", tt.driver, got, tt.want)
			}
		})
	}
}

func TestRebind(t *testing.T) {
	q := "SELECT * FROM trade WHERE t_id = ? AND t_st_id = ?"

	if got := DialectSQLite.Rebind(q); got != q {
		t.Errorf("sqlite Rebind() = %q, want unchanged", got)
	}
	want := "SELECT * FROM trade WHERE t_id = $1 AND t_st_id = $2"
	if got := DialectPostgres.Rebind(q); got != want {
		t.Errorf("postgres Rebind() = %q, want %q", got, want)
	}
}

func TestCatalogue_PlaceholdersInOrder(t *testing.T) {
	// SQLite numbers "$n" parameters by first appearance, so each text must
	// introduce $1, $2, ... in ascending order.
	for id, st := range catalogue {
		for _, d := range []Dialect{DialectSQLite, DialectPostgres} {
			text := st.textFor(d)
			next := 1
			for i := 0; i < len(text); i++ {
				if text[i] != '$' || i+1 >= len(text) || text[i+1] < '1' || text[i+1] > '9' {
					continue
				}
				n := int(text[i+1] - '0')
				if n > next {
					t.Errorf("%s (%s): $%d appears before $%d", id, d, n, next)
				}
				if n == next {
					next++
				}
			}
		}
	}
}
