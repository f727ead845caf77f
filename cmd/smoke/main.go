// Smoke drives a running inoutboard instance end to end: health check,
// seed one person, push a status batch, read the board back. Useful after
// a deploy when the admin console isn't handy.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
)

func main() {
	base := flag.String("base", "http://localhost:8080", "base URL of the service")
	flag.Parse()

	client := resty.New().
		SetBaseURL(*base).
		SetTimeout(5 * time.Second)

	if err := run(client); err != nil {
		fmt.Fprintln(os.Stderr, "smoke failed:", err)
		os.Exit(1)
	}
	fmt.Println("smoke ok")
}

func run(client *resty.Client) error {
	resp, err := client.R().Get("/healthz")
	if err != nil {
		return fmt.Errorf("healthz: %w", err)
	}
	fmt.Printf("healthz %d %s\n", resp.StatusCode(), resp.Body())

	var added struct {
		Result string `json:"result"`
		ID     int64  `json:"id"`
	}
	resp, err = client.R().
		SetQueryParams(map[string]string{
			"action":     "add",
			"name":       "smoke test",
			"department": "ops",
			"room":       "n/a",
		}).
		SetResult(&added).
		Get("/api/admin")
	if err != nil {
		return fmt.Errorf("admin add: %w", err)
	}
	if added.Result != "ok" {
		return fmt.Errorf("admin add: %d %s", resp.StatusCode(), resp.Body())
	}
	fmt.Printf("added person %d\n", added.ID)

	resp, err = client.R().
		SetQueryParam("data", fmt.Sprintf("%d,1,%d,0", added.ID, added.ID)).
		Get("/api/status_update")
	if err != nil {
		return fmt.Errorf("status_update: %w", err)
	}
	fmt.Printf("status_update %d %s\n", resp.StatusCode(), resp.Body())

	resp, err = client.R().Get("/api/status_view")
	if err != nil {
		return fmt.Errorf("status_view: %w", err)
	}
	fmt.Printf("status_view %d (%d bytes)\n", resp.StatusCode(), len(resp.Body()))

	// Clean up the seeded person.
	resp, err = client.R().
		SetQueryParams(map[string]string{
			"action":    "delete",
			"person_id": fmt.Sprint(added.ID),
		}).
		Get("/api/admin")
	if err != nil {
		return fmt.Errorf("admin delete: %w", err)
	}
	fmt.Printf("deleted person %d (%d)\n", added.ID, resp.StatusCode())
	return nil
}
