package diff

import (
	"strings"
	"testing"
)

func TestUnified(t *testing.T) {
	a := "<?php\n$_['a'] = 1;\n"
	b := "<?php\n$_['a'] = 1;\n\n// Development (added by Cartwryte Sleuth)\n"

	patch, err := Unified("system/config/default.php", a, b, 0)
	if err != nil {
		t.Fatalf("Unified failed: %v", err)
	}

	for _, want := range []string{
		"--- a/system/config/default.php\n",
		"+++ b/system/config/default.php\n",
		"@@ ",
		"+// Development (added by Cartwryte Sleuth)\n",
		" $_['a'] = 1;\n",
	} {
		if !strings.Contains(patch, want) {
			t.Errorf("patch missing %q:\n%s", want, patch)
		}
	}

	adds, dels := Stats(patch)
	if adds != 2 || dels != 0 {
		t.Errorf("Stats = +%d -%d, want +2 -0", adds, dels)
	}
}

func TestUnified_Identical(t *testing.T) {
	patch, err := Unified("x.php", "same\n", "same\n", 3)
	if err != nil {
		t.Fatal(err)
	}
	if patch != "" {
		t.Errorf("expected empty patch, got %q", patch)
	}
}

func TestStats_CommentedLines(t *testing.T) {
	patch, err := Unified("framework.php",
		"set_error_handler(function(){\n});\necho 1;\n",
		"// set_error_handler(function(){\n// });\necho 1;\n", 3)
	if err != nil {
		t.Fatal(err)
	}

	adds, dels := Stats(patch)
	if adds != 2 || dels != 2 {
		t.Errorf("Stats = +%d -%d, want +2 -2", adds, dels)
	}
}
