// Package banner prints the startup summary.
package banner

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/config"
)

const art = `
████████╗██████╗  █████╗  ██████╗██╗  ██╗███╗   ██╗ █████╗ ███╗   ███╗██╗ ██████╗
╚══██╔══╝██╔══██╗██╔══██╗██╔════╝██║ ██╔╝████╗  ██║██╔══██╗████╗ ████║██║██╔════╝
   ██║   ██████╔╝███████║██║     █████╔╝ ██╔██╗ ██║███████║██╔████╔██║██║██║
   ██║   ██╔══██╗██╔══██║██║     ██╔═██╗ ██║╚██╗██║██╔══██║██║╚██╔╝██║██║██║
   ██║   ██║  ██║██║  ██║╚██████╗██║  ██╗██║ ╚████║██║  ██║██║ ╚═╝ ██║██║╚██████╗
   ╚═╝   ╚═╝  ╚═╝╚═╝  ╚═╝ ╚═════╝╚═╝  ╚═╝╚═╝  ╚═══╝╚═╝  ╚═╝╚═╝     ╚═╝╚═╝ ╚═════╝
                                A I   L A B
`

// Print writes the banner, the effective settings and a readiness
// checklist to stdout.
func Print(cfg *config.Config, version string, promptCount int) {
	fmt.Print(art)
	fmt.Println("== Config =====================================================")
	fmt.Printf("Listen:   %s\n", cfg.Addr())
	fmt.Printf("DB Path:  %s\n", cfg.Server.DBPath)
	if version != "" {
		fmt.Printf("Version:  %s\n", version)
	}
	fmt.Printf("Prompts:  %s loaded\n", humanize.Comma(int64(promptCount)))

	fmt.Println("\n== Endpoints ==================================================")
	fmt.Println("GET  /v1/prompts?page=<n>&tag=<t>&q=<text>&sort=<mode> - the feed")
	fmt.Println("POST /v1/prompts - share a prompt (JSON: title, body, tags, tip)")
	fmt.Println("GET  /v1/prompts/{id} - detail view with comments and related")
	fmt.Println("POST /v1/sandbox/run - run a prompt against the model sandbox")
	fmt.Println("GET  /v1/discovery - top prompts, recent updates, trending tags")
	fmt.Println("GET  /docs/ - API documentation, /metrics - Prometheus metrics")

	fmt.Println("\n== Checks =====================================================")
	if cfg.Sandbox.APIKey != "" {
		fmt.Println("- Sandbox: live provider configured")
	} else {
		fmt.Println("- Sandbox: preview mode (set GEMINI_API_KEY for live runs)")
	}
	if cfg.Upstream.URL != "" {
		fmt.Printf("- Upstream: %s\n", cfg.Upstream.URL)
	} else {
		fmt.Println("- Upstream: none (local snapshot only)")
	}
	if cfg.Refresh.Enabled {
		cron := cfg.Refresh.Cron
		if cron == "" {
			cron = "*/15 * * * *"
		}
		fmt.Printf("- Refresh: enabled (cron=%s)\n", cron)
	} else {
		fmt.Println("- Refresh: disabled")
	}
	if cfg.Server.TLS.CertFile != "" && cfg.Server.TLS.KeyFile != "" {
		fmt.Println("- TLS: configured")
	} else {
		fmt.Println("- TLS: unconfigured")
	}

	fmt.Println("\n== Logs: =================================================")
}
