package main

import (
	"bytes"
	"errors"
	"net/http"
	"os"
	"strings"
	"testing"

	"gamedex/internal/models"
	"gamedex/internal/services"
	"gamedex/internal/shared"
	tu "gamedex/internal/testing"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			api := services.NewAvailabilityClient("http://example.com", httpClient)

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				API:        api,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.api != api {
				t.Error("expected api to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.api == nil {
				t.Error("expected an API client built from the default config")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		data := map[string]int{"gamepass": 8}
		if err := runner.writeJSON(data, false); err != nil {
			t.Fatalf("writeJSON failed: %v", err)
		}
		if !strings.Contains(output.String(), `"gamepass":8`) {
			t.Errorf("unexpected output: %s", output.String())
		}
		if !strings.HasSuffix(output.String(), "\n") {
			t.Error("output should end with a newline")
		}
	})

	t.Run("writeJSON pretty", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writeJSON(map[string]int{"gamepass": 8}, true); err != nil {
			t.Fatalf("writeJSON failed: %v", err)
		}
		if !strings.Contains(output.String(), "  \"gamepass\": 8") {
			t.Errorf("expected indented output, got: %s", output.String())
		}
	})

	t.Run("writeJSON failing writer", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

		if err := runner.writeJSON(map[string]int{}, false); err == nil {
			t.Error("expected error from failing writer")
		}
	})

	t.Run("writePlain", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writePlain("hello %s\n", "world"); err != nil {
			t.Fatalf("writePlain failed: %v", err)
		}
		if output.String() != "hello world\n" {
			t.Errorf("unexpected output: %q", output.String())
		}
	})
}

func TestParseSelection(t *testing.T) {
	t.Run("EmptyMeansAll", func(t *testing.T) {
		selection, err := parseSelection("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, svc := range models.AllServices() {
			if !selection.Enabled(svc) {
				t.Errorf("%s should be enabled by default", svc)
			}
		}
	})

	t.Run("ListedServicesOnly", func(t *testing.T) {
		selection, err := parseSelection("gamepass, psplus")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !selection.Enabled(models.ServiceGamePass) || !selection.Enabled(models.ServicePSPlus) {
			t.Error("listed services should be enabled")
		}
		if selection.Enabled(models.ServiceUbisoftPlus) {
			t.Error("unlisted services should be disabled")
		}
	})

	t.Run("UnknownServiceRejected", func(t *testing.T) {
		_, err := parseSelection("gamepass,eaplay")
		if !errors.Is(err, shared.ErrUnknownService) {
			t.Errorf("expected ErrUnknownService, got %v", err)
		}
	})
}
