// cmd/tools/registry-check/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"cabs-workers/pkg/registry"
)

func main() {
	registryPath := flag.String("path", "configs/activity-registry.json", "Path to registry file")
	taskType := flag.String("taskType", "", "Task type to validate a payload against")
	payloadPath := flag.String("payload", "", "Path to a JSON payload file (requires -taskType)")
	flag.Parse()

	reg, err := registry.LoadRegistry(*registryPath)
	if err != nil {
		fmt.Printf("Error loading registry: %v\n", err)
		os.Exit(1)
	}

	if err := reg.Validate(); err != nil {
		fmt.Printf("Registry validation failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Registry %s is valid (%d activities)\n", *registryPath, len(reg.Activities))

	for _, a := range reg.Activities {
		fmt.Printf("  %-24s %-20s %s\n", a.TaskType, a.ImplementationStatus, a.DisplayName)
	}

	if *payloadPath == "" {
		return
	}
	if *taskType == "" {
		fmt.Println("Error: -payload requires -taskType")
		os.Exit(1)
	}

	data, err := os.ReadFile(*payloadPath)
	if err != nil {
		fmt.Printf("Error reading payload: %v\n", err)
		os.Exit(1)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(data, &payload); err != nil {
		fmt.Printf("Error parsing payload: %v\n", err)
		os.Exit(1)
	}

	if err := reg.ValidatePayload(*taskType, payload); err != nil {
		fmt.Printf("Payload validation failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Payload %s is valid for task type %s\n", *payloadPath, *taskType)
}
