// Command controller-check exercises the portal's read-only controller
// queries against a live UniFi controller. Run it before a deployment to
// verify that login, session reuse, and the proxy API paths work on the
// installed firmware.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/lslt/portal-services/internal/unifi"
)

var (
	controllerURL = flag.String("controller", os.Getenv("UNIFI_HOST"), "Controller URL (or UNIFI_HOST env)")
	username      = flag.String("username", os.Getenv("UNIFI_USERNAME"), "Admin username (or UNIFI_USERNAME env)")
	password      = flag.String("password", os.Getenv("UNIFI_PASSWORD"), "Admin password (or UNIFI_PASSWORD env)")
	site          = flag.String("site", envOr("UNIFI_SITE", "default"), "Controller site name")
	mac           = flag.String("mac", "", "Optional MAC address to look up in the active clients")
	verbose       = flag.Bool("verbose", false, "Print full JSON responses")
)

type CheckResult struct {
	Name       string
	Success    bool
	Error      string
	Detail     string
	Duration   time.Duration
	JSONSample string
}

func main() {
	flag.Parse()

	if *controllerURL == "" || *username == "" || *password == "" {
		log.Fatal("controller, username, and password are required (flags or UNIFI_HOST/UNIFI_USERNAME/UNIFI_PASSWORD environment)")
	}

	client, err := unifi.New(*controllerURL, *username, *password, *site)
	if err != nil {
		log.Fatalf("Failed to create controller client: %v", err)
	}

	ctx := context.Background()

	fmt.Println("🔌 Checking UniFi controller connectivity...")
	fmt.Printf("   Controller: %s\n", client.ControllerURL())
	fmt.Printf("   Site: %s\n", client.Site())
	fmt.Println("=" + strings.Repeat("=", 60))
	fmt.Println()

	results := []CheckResult{
		checkSiteInfo(ctx, client),
		checkHealth(ctx, client),
		checkNetworkStats(ctx, client),
		checkBlockedDevices(ctx, client),
	}

	if *mac != "" {
		results = append(results, checkDeviceStatus(ctx, client, *mac))
	}

	if err := client.Logout(ctx); err != nil {
		fmt.Printf("⚠️  Logout failed: %v\n", err)
	}

	fmt.Println("📊 Check Summary")
	fmt.Println("=" + strings.Repeat("=", 60))
	fmt.Println()

	failed := 0

	for _, result := range results {
		status := "✅"
		if !result.Success {
			status = "❌"
			failed++
		}

		fmt.Printf("%s %s (%v)\n", status, result.Name, result.Duration.Round(time.Millisecond))

		if result.Error != "" {
			fmt.Printf("   Error: %s\n", result.Error)
		}

		if result.Detail != "" {
			fmt.Printf("   %s\n", result.Detail)
		}

		if *verbose && result.JSONSample != "" {
			fmt.Printf("   JSON:\n%s\n", indentLines(result.JSONSample, "      "))
		}

		fmt.Println()
	}

	fmt.Println("=" + strings.Repeat("=", 60))

	if failed == 0 {
		fmt.Println("✅ Controller integration is ready.")
		return
	}

	fmt.Printf("❌ %d of %d checks failed\n", failed, len(results))
	os.Exit(1)
}

func checkSiteInfo(ctx context.Context, client *unifi.Client) CheckResult {
	start := time.Now()
	result := CheckResult{Name: "GetSiteInfo"}

	info, err := client.GetSiteInfo(ctx)
	result.Duration = time.Since(start)

	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Success = true
	result.Detail = fmt.Sprintf("site %q", info.Name)

	if info.Description != "" {
		result.Detail = fmt.Sprintf("site %q (%s)", info.Name, info.Description)
	}

	if *verbose {
		result.JSONSample = marshalSample(info)
	}

	return result
}

func checkHealth(ctx context.Context, client *unifi.Client) CheckResult {
	start := time.Now()
	result := CheckResult{Name: "HealthCheck"}

	health := client.HealthCheck(ctx)
	result.Duration = time.Since(start)

	if health.Status != "healthy" {
		result.Error = health.Error
		if result.Error == "" {
			result.Error = "controller reported " + health.Status
		}

		return result
	}

	result.Success = true
	result.Detail = fmt.Sprintf("%d subsystems reporting", len(health.Subsystems))

	if *verbose {
		result.JSONSample = marshalSample(health)
	}

	return result
}

func checkNetworkStats(ctx context.Context, client *unifi.Client) CheckResult {
	start := time.Now()
	result := CheckResult{Name: "GetNetworkStats"}

	stats, err := client.GetNetworkStats(ctx)
	result.Duration = time.Since(start)

	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Success = true
	result.Detail = fmt.Sprintf("%d active, %d guests, %d authorized",
		stats.ActiveClients, stats.GuestClients, stats.AuthenticatedClients)

	if *verbose {
		result.JSONSample = marshalSample(stats)
	}

	return result
}

func checkBlockedDevices(ctx context.Context, client *unifi.Client) CheckResult {
	start := time.Now()
	result := CheckResult{Name: "ListBlockedDevices"}

	devices, err := client.ListBlockedDevices(ctx)
	result.Duration = time.Since(start)

	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Success = true
	result.Detail = fmt.Sprintf("%d blocked devices", len(devices))

	if *verbose && len(devices) > 0 {
		result.JSONSample = marshalSample(devices[0])
	}

	return result
}

func checkDeviceStatus(ctx context.Context, client *unifi.Client, mac string) CheckResult {
	start := time.Now()
	result := CheckResult{Name: "GetDeviceStatus " + mac}

	status, err := client.GetDeviceStatus(ctx, mac)
	result.Duration = time.Since(start)

	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Success = true

	switch {
	case !status.Found:
		result.Detail = "device not in active clients"
	case status.IsGuest:
		result.Detail = fmt.Sprintf("online guest at %s (%s)", status.IPAddress, status.Hostname)
	default:
		result.Detail = fmt.Sprintf("online at %s (%s)", status.IPAddress, status.Hostname)
	}

	if *verbose {
		result.JSONSample = marshalSample(status)
	}

	return result
}

func marshalSample(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}

	return string(data)
}

func indentLines(s, indent string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = indent + line
	}

	return strings.Join(lines, "\n")
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return fallback
}
