package library

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/amjp/internal/shared"
)

func setHelperCommand(t *testing.T, mode string, captured *[]string) {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		if captured != nil {
			*captured = append([]string{name}, args...)
		}
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", fmt.Sprintf("OSASCRIPT_HELPER_MODE=%s", mode))
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
}

func TestOSAScriptRun(t *testing.T) {
	t.Run("passes script as -e argument", func(t *testing.T) {
		var args []string
		setHelperCommand(t, "success", &args)

		out, err := NewOSAScript(WithBinary("/usr/bin/osascript")).Run(context.Background(), `return "Success"`)
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
		if out != "Success" {
			t.Errorf("expected trimmed output 'Success', got %q", out)
		}
		if len(args) != 3 || args[0] != "/usr/bin/osascript" || args[1] != "-e" || args[2] != `return "Success"` {
			t.Errorf("unexpected command: %v", args)
		}
	})

	t.Run("captures stderr on failure", func(t *testing.T) {
		setHelperCommand(t, "failure", nil)

		_, err := NewOSAScript().Run(context.Background(), "bad")
		if !errors.Is(err, shared.ErrScriptFailed) {
			t.Fatalf("expected ErrScriptFailed, got %v", err)
		}
		if !strings.Contains(err.Error(), "execution error") {
			t.Errorf("expected stderr in error, got %v", err)
		}
	})

	t.Run("times out", func(t *testing.T) {
		setHelperCommand(t, "hang", nil)

		_, err := NewOSAScript(WithTimeout(50*time.Millisecond)).Run(context.Background(), "delay 10")
		if !errors.Is(err, shared.ErrScriptFailed) {
			t.Fatalf("expected ErrScriptFailed, got %v", err)
		}
		if !strings.Contains(err.Error(), "timed out") {
			t.Errorf("expected timeout message, got %v", err)
		}
	})

	t.Run("multiline output", func(t *testing.T) {
		setHelperCommand(t, "listing", nil)

		out, err := NewOSAScript().Run(context.Background(), "list")
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
		tracks, bad := ParseListing(out)
		if len(tracks) != 2 || len(bad) != 0 {
			t.Errorf("expected 2 tracks and no malformed lines, got %d and %d", len(tracks), len(bad))
		}
	})
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	switch os.Getenv("OSASCRIPT_HELPER_MODE") {
	case "success":
		fmt.Println("Success")
		os.Exit(0)
	case "failure":
		fmt.Fprintln(os.Stderr, "0:3: execution error: Music got an error (-1728)")
		os.Exit(1)
	case "hang":
		time.Sleep(5 * time.Second)
		os.Exit(0)
	case "listing":
		fmt.Println("ABC123|Lemon|Kenshi Yonezu")
		fmt.Println("DEF456|Pretender|Official HIGE DANdism")
		os.Exit(0)
	default:
		os.Exit(0)
	}
}
