package upgrade

import (
	"errors"
	"testing"
)

func testStep(from, to int) Step {
	return Step{From: from, To: to, Statements: []string{"SELECT 1"}}
}

func TestNewRegistryValidation(t *testing.T) {
	tests := []struct {
		name  string
		steps []Step
		valid bool
	}{
		{
			name:  "empty registry",
			steps: nil,
			valid: true,
		},
		{
			name:  "linear chain",
			steps: []Step{testStep(58, 59), testStep(59, 60), testStep(60, 61)},
			valid: true,
		},
		{
			name:  "duplicate source version",
			steps: []Step{testStep(60, 61), testStep(60, 62)},
			valid: false,
		},
		{
			name:  "step does not increase version",
			steps: []Step{testStep(61, 61)},
			valid: false,
		},
		{
			name:  "downgrade step",
			steps: []Step{testStep(61, 60)},
			valid: false,
		},
		{
			name:  "step without statements",
			steps: []Step{{From: 60, To: 61}},
			valid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.steps)
			if tt.valid && err != nil {
				t.Fatalf("NewRegistry() error = %v, want nil", err)
			}
			if !tt.valid {
				if err == nil {
					t.Fatal("NewRegistry() error = nil, want integrity error")
				}
				if !errors.Is(err, ErrRegistryIntegrity) {
					t.Fatalf("NewRegistry() error = %v, want ErrRegistryIntegrity", err)
				}
			}
		})
	}
}

func TestBuildChain(t *testing.T) {
	registry, err := NewRegistry([]Step{testStep(58, 59), testStep(59, 60), testStep(60, 61)})
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	t.Run("full chain in order", func(t *testing.T) {
		chain, err := registry.BuildChain(58, 61)
		if err != nil {
			t.Fatalf("BuildChain(58, 61) error = %v", err)
		}
		want := [][2]int{{58, 59}, {59, 60}, {60, 61}}
		if len(chain) != len(want) {
			t.Fatalf("BuildChain(58, 61) returned %d steps, want %d", len(chain), len(want))
		}
		for i, step := range chain {
			if step.From != want[i][0] || step.To != want[i][1] {
				t.Errorf("chain[%d] = %d to %d, want %d to %d",
					i, step.From, step.To, want[i][0], want[i][1])
			}
		}
	})

	t.Run("already current returns empty chain", func(t *testing.T) {
		chain, err := registry.BuildChain(61, 61)
		if err != nil {
			t.Fatalf("BuildChain(61, 61) error = %v", err)
		}
		if len(chain) != 0 {
			t.Fatalf("BuildChain(61, 61) returned %d steps, want 0", len(chain))
		}
	})

	t.Run("downgrade is not supported", func(t *testing.T) {
		_, err := registry.BuildChain(61, 59)
		if !errors.Is(err, ErrNoPath) {
			t.Fatalf("BuildChain(61, 59) error = %v, want ErrNoPath", err)
		}
	})

	t.Run("gap in chain", func(t *testing.T) {
		gappy, err := NewRegistry([]Step{testStep(58, 59), testStep(60, 61)})
		if err != nil {
			t.Fatalf("NewRegistry() error = %v", err)
		}
		_, err = gappy.BuildChain(58, 61)
		if !errors.Is(err, ErrNoPath) {
			t.Fatalf("BuildChain(58, 61) error = %v, want ErrNoPath", err)
		}
	})

	t.Run("unknown current version", func(t *testing.T) {
		_, err := registry.BuildChain(40, 61)
		if !errors.Is(err, ErrNoPath) {
			t.Fatalf("BuildChain(40, 61) error = %v, want ErrNoPath", err)
		}
	})
}

func TestVerifyChain(t *testing.T) {
	gappy, err := NewRegistry([]Step{testStep(58, 59), testStep(60, 61)})
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	if err := gappy.VerifyChain(); !errors.Is(err, ErrRegistryIntegrity) {
		t.Fatalf("VerifyChain() error = %v, want ErrRegistryIntegrity", err)
	}

	full, err := NewRegistry([]Step{testStep(58, 59), testStep(59, 60)})
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	if err := full.VerifyChain(); err != nil {
		t.Fatalf("VerifyChain() error = %v, want nil", err)
	}
}

func TestRegistryBounds(t *testing.T) {
	registry, err := NewRegistry([]Step{testStep(58, 59), testStep(59, 60), testStep(60, 61)})
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	if got := registry.Lowest(); got != 58 {
		t.Errorf("Lowest() = %d, want 58", got)
	}
	if got := registry.Latest(); got != 61 {
		t.Errorf("Latest() = %d, want 61", got)
	}
	if step, ok := registry.StepFrom(59); !ok || step.To != 60 {
		t.Errorf("StepFrom(59) = %+v, %v; want step to 60", step, ok)
	}
	if _, ok := registry.StepFrom(61); ok {
		t.Error("StepFrom(61) reported a step past the end of the chain")
	}
}
