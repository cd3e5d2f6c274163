package validate

import (
	"reflect"
	"testing"
)

func TestCommandMatcher(t *testing.T) {
	m := commandMatcher{}

	t.Run("code block lines", func(t *testing.T) {
		text := "Do this:\n```\nsystemctl restart nginx\njournalctl -u nginx\n```\ndone."
		got := m.Extract(text)
		want := []string{"systemctl restart nginx", "journalctl -u nginx"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Expected %v, got %v", want, got)
		}
	})

	t.Run("inline privileged only", func(t *testing.T) {
		text := "Check with `df -P` then restart via `sudo systemctl restart nginx`."
		got := m.Extract(text)
		if len(got) != 1 || got[0] != "sudo systemctl restart nginx" {
			t.Errorf("Expected only the privileged span, got %v", got)
		}
	})
}

func TestFileMatcher(t *testing.T) {
	m := fileMatcher{}
	got := m.Extract("Edit /etc/fstab, check ~/.bashrc and nginx.conf; ignore plain words.")
	want := []string{"/etc/fstab", "~/.bashrc", "nginx.conf"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestPackageMatcher(t *testing.T) {
	m := packageMatcher{}

	t.Run("install line", func(t *testing.T) {
		got := m.Extract("sudo pacman -S htop iotop")
		want := []string{"htop", "iotop"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Expected %v, got %v", want, got)
		}
	})

	t.Run("inline code stops at closing backtick", func(t *testing.T) {
		got := m.Extract("Run `yay -S paru` and then relog to pick it up.")
		want := []string{"paru"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Expected %v, got %v", want, got)
		}
	})

	t.Run("no install lines", func(t *testing.T) {
		if got := m.Extract("pacman is a package manager"); len(got) != 0 {
			t.Errorf("Expected no packages, got %v", got)
		}
	})
}
