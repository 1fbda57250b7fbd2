// Package loader provides functions for loading GanetiInstance resources
// from YAML manifests.
package loader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rrey/collection-ganeti/api/v1alpha1"
)

// LoadFromFile loads a GanetiInstance resource from a YAML file.
// The file must be in the ganeti.rrey.dev/v1alpha1 format.
func LoadFromFile(path string) (*v1alpha1.Instance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	return LoadFromYAML(data)
}

// LoadFromYAML loads a GanetiInstance resource from YAML bytes.
// The YAML must be in the ganeti.rrey.dev/v1alpha1 format.
func LoadFromYAML(data []byte) (*v1alpha1.Instance, error) {
	var inst v1alpha1.Instance
	if err := yaml.Unmarshal(data, &inst); err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	// Validate that apiVersion and kind are present
	if inst.APIVersion == "" {
		return nil, fmt.Errorf("missing required field: apiVersion")
	}
	if inst.Kind == "" {
		return nil, fmt.Errorf("missing required field: kind")
	}

	// Validate apiVersion matches expected
	expectedAPIVersion := v1alpha1.GroupName + "/" + v1alpha1.Version
	if inst.APIVersion != expectedAPIVersion {
		return nil, fmt.Errorf("unsupported apiVersion: %s (expected: %s)", inst.APIVersion, expectedAPIVersion)
	}

	// Validate kind
	if inst.Kind != v1alpha1.InstanceKind {
		return nil, fmt.Errorf("unsupported kind: %s (expected: %s)", inst.Kind, v1alpha1.InstanceKind)
	}

	// Normalize the name and fill omitted fields with defaults
	inst.Normalize()

	if err := validateSpec(&inst); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &inst, nil
}

// SaveToFile saves a GanetiInstance resource to a YAML file.
func SaveToFile(inst *v1alpha1.Instance, path string) error {
	// Ensure TypeMeta is set
	v1alpha1.SetDefaultAPIVersion(inst)

	data, err := yaml.Marshal(inst)
	if err != nil {
		return fmt.Errorf("failed to marshal instance to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}

	return nil
}

// validateSpec validates the GanetiInstance spec for required fields and
// consistency. Disk, NIC and OS parameter contents are validated later by the
// payload translation, which owns those schemas.
func validateSpec(inst *v1alpha1.Instance) error {
	// Validate metadata.name
	if inst.Name == "" {
		return fmt.Errorf("metadata.name is required")
	}

	// Validate desired state
	if !inst.GetState().Valid() {
		return fmt.Errorf("spec.state %q is not one of %v", inst.Spec.State, v1alpha1.ValidStates())
	}

	// Validate resources
	if inst.Spec.MemoryMB < 0 {
		return fmt.Errorf("spec.memory must not be negative")
	}
	if inst.Spec.VCPUs < 0 {
		return fmt.Errorf("spec.vcpus must not be negative")
	}

	// Validate disk template
	template := inst.GetDiskTemplate()
	if !contains(v1alpha1.DiskTemplates(), template) {
		return fmt.Errorf("spec.diskTemplate %q is not one of %v", template, v1alpha1.DiskTemplates())
	}

	// Validate hypervisor
	hypervisor := inst.GetHypervisor()
	if !contains(v1alpha1.Hypervisors(), hypervisor) {
		return fmt.Errorf("spec.hypervisor %q is not one of %v", hypervisor, v1alpha1.Hypervisors())
	}

	// A secondary node only makes sense next to a pinned primary
	if inst.Spec.SNode != "" && inst.Spec.PNode == "" {
		return fmt.Errorf("spec.snode requires spec.pnode to be set")
	}

	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
