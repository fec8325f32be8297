package e2e

import (
	"os"
	"testing"

	"github.com/cucumber/godog"
)

// TestFeatures runs the scenarios against a live server:
//
//	VERIDEX_E2E_URL=http://localhost:8080 \
//	VERIDEX_E2E_TOKEN=$(veridex token issue --client-id e2e) \
//	go test ./e2e
func TestFeatures(t *testing.T) {
	baseURL := os.Getenv("VERIDEX_E2E_URL")
	if baseURL == "" {
		t.Skip("VERIDEX_E2E_URL not set")
	}
	tc := NewTestContext(baseURL, os.Getenv("VERIDEX_E2E_TOKEN"))

	suite := godog.TestSuite{
		ScenarioInitializer: func(ctx *godog.ScenarioContext) {
			RegisterSteps(ctx, tc)
		},
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}
	if suite.Run() != 0 {
		t.Fatal("scenario failures")
	}
}
