package fastpath

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		query string
		want  Class
	}{
		{"how is my computer", ClassSystemHealth},
		{"how's my computer doing today", ClassSystemHealth},
		{"any errors?", ClassSystemHealth},
		{"is everything ok", ClassSystemHealth},
		{"status", ClassSystemHealth},
		{"errors", ClassSystemHealth},
		{"overall system health please", ClassSystemHealth},

		{"what changed since yesterday", ClassWhatChanged},
		{"what's new", ClassWhatChanged},
		{"anything different since last time", ClassWhatChanged},

		{"show me disk usage", ClassDiskUsage},
		{"how much disk do I have left", ClassDiskUsage},
		{"am I out of storage space", ClassDiskUsage},

		{"memory usage", ClassMemoryUsage},
		{"how much ram is in use", ClassMemoryUsage},

		{"any failed services", ClassFailedServices},
		{"list failed units", ClassFailedServices},

		{"install nginx for me", ClassNotFastPath},
		{"what cpu do I have", ClassNotFastPath},
		{"", ClassNotFastPath},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := Classify(tt.query); got != tt.want {
				t.Errorf("Expected %s for %q, got %s", tt.want, tt.query, got)
			}
		})
	}
}

func TestClassifyStripsGreetings(t *testing.T) {
	tests := []struct {
		query string
		want  Class
	}{
		{"hello! how is my computer?", ClassSystemHealth},
		{"hey what changed since last time", ClassWhatChanged},
		{"good morning, disk usage please", ClassDiskUsage},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := Classify(tt.query); got != tt.want {
				t.Errorf("Expected %s for %q, got %s", tt.want, tt.query, got)
			}
		})
	}
}

func TestClassifyPriorityOrder(t *testing.T) {
	// "any errors with my disk space" matches both health and disk
	// keyword sets; health wins by priority.
	if got := Classify("any errors with my disk space"); got != ClassSystemHealth {
		t.Errorf("Expected health to take priority, got %s", got)
	}
}
