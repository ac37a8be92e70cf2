package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestHealthWithoutDatabase(t *testing.T) {
	app := fiber.New()
	BaseRoutes(app, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusServiceUnavailable {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "DOWN" {
		t.Fatalf("body = %v", body)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	if err != nil || resp.StatusCode != fiber.StatusOK {
		t.Fatalf("root: %v %v", resp, err)
	}
}
