package watch

import "testing"

func TestClassifyPrecedence(t *testing.T) {
	t.Parallel()

	cases := []struct {
		path   string
		role   string
		action string
	}{
		// Brain directory rules come first.
		{"brain/plan.md", "architect", "coding"},
		{"brain/sketch.png", "architect", "reviewing"},
		{"brain/scratch.bin", "architect", "thinking"},
		// Source extensions beat the later test-name rule.
		{"internal/office/service.go", "developer", "coding"},
		{"internal/office/service_test.go", "developer", "coding"},
		{"web/app.ts", "developer", "coding"},
		// Config and manifests.
		{"deploy/docker-compose.yml", "devops", "coding"},
		{"Dockerfile", "devops", "coding"},
		{"go.mod", "devops", "coding"},
		// Markup and style.
		{"web/index.html", "designer", "coding"},
		{"web/styles.css", "designer", "coding"},
		// Docs outside the brain directory.
		{"docs/README.md", "pm", "coding"},
		{"NOTES.txt", "pm", "coding"},
		// Test-named paths with unrecognized extensions.
		{"tests/fixture.dat", "tester", "reviewing"},
		{"spec.data", "tester", "reviewing"},
		// Everything else.
		{"data.xyz", "developer", "coding"},
	}

	for _, tc := range cases {
		c := Classify(tc.path, "brain")
		if c.Role != tc.role || c.Action != tc.action {
			t.Errorf("Classify(%q) = %s/%s, want %s/%s", tc.path, c.Role, c.Action, tc.role, tc.action)
		}
		if c.AgentID != "fs-"+tc.role {
			t.Errorf("Classify(%q) agent id = %q, want %q", tc.path, c.AgentID, "fs-"+tc.role)
		}
		if c.Name == "" {
			t.Errorf("Classify(%q) has no display name", tc.path)
		}
	}
}

func TestClassifyWithoutBrainDir(t *testing.T) {
	t.Parallel()

	c := Classify("brain/plan.md", "")
	if c.Role != "pm" {
		t.Fatalf("without a brain dir, markdown should be pm, got %s", c.Role)
	}
}
