package tool

import "testing"

func TestSpecsCatalog(t *testing.T) {
	t.Parallel()

	specs := Specs()
	if len(specs) != 4 {
		t.Fatalf("unexpected spec count: %d", len(specs))
	}

	byName := map[string]int{}
	for _, s := range specs {
		byName[s.Name] = len(s.Params)
		if s.Desc == "" {
			t.Fatalf("tool %s has no description", s.Name)
		}
		for param, p := range s.Params {
			if p.Type == "" || p.Desc == "" {
				t.Fatalf("tool %s param %s is underspecified", s.Name, param)
			}
		}
	}

	want := map[string]int{
		ToolFetchMarketData: 1,
		ToolUpdatePrice:     3,
		ToolCreateRestock:   2,
		ToolSendEmail:       2,
	}
	for name, params := range want {
		if byName[name] != params {
			t.Fatalf("tool %s: got %d params, want %d", name, byName[name], params)
		}
	}
}
