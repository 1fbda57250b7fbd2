// Package translate converts a declarative Instance manifest into the request
// payload accepted by the controller's instance creation endpoint.
//
// Translation is a pure function: all structural validation happens here,
// before any network call, and errors identify the offending disk/NIC index
// and key.
package translate

import (
	"fmt"
	"sort"

	"github.com/rrey/collection-ganeti/api/v1alpha1"
)

// diskKeys is the fixed set of disk parameters accepted for every disk
// template except "ext", which forwards arbitrary provider kwargs.
var diskKeys = []string{"size", "mode", "name", "provider"}

// ExtProvider is the extstorage provider value that unlocks the extensible
// per-disk schema.
const ExtProvider = "ext"

// BeParams are the backend (hypervisor-independent) instance parameters.
type BeParams struct {
	Memory int `json:"memory,omitempty" yaml:"memory,omitempty"`
	VCPUs  int `json:"vcpus,omitempty" yaml:"vcpus,omitempty"`
}

// CreatePayload is the body of the instance creation request, shaped after
// the RAPI instance-creation document (__version__ 1).
//
// Disks, Nics and OSParams are omitted entirely when empty: some controller
// versions treat an absent field and an empty list differently.
type CreatePayload struct {
	Version      int                      `json:"__version__" yaml:"__version__"`
	Mode         string                   `json:"mode" yaml:"mode"`
	InstanceName string                   `json:"instance_name" yaml:"instance_name"`
	DiskTemplate string                   `json:"disk_template" yaml:"disk_template"`
	Hypervisor   string                   `json:"hypervisor,omitempty" yaml:"hypervisor,omitempty"`
	IAllocator   string                   `json:"iallocator,omitempty" yaml:"iallocator,omitempty"`
	OSType       string                   `json:"os_type,omitempty" yaml:"os_type,omitempty"`
	PNode        string                   `json:"pnode,omitempty" yaml:"pnode,omitempty"`
	SNode        string                   `json:"snode,omitempty" yaml:"snode,omitempty"`
	BeParams     BeParams                 `json:"beparams" yaml:"beparams"`
	Disks        []map[string]interface{} `json:"disks,omitempty" yaml:"disks,omitempty"`
	Nics         []map[string]interface{} `json:"nics,omitempty" yaml:"nics,omitempty"`
	OSParams     map[string]interface{}   `json:"osparams,omitempty" yaml:"osparams,omitempty"`
}

// Payload builds the creation request body for the given instance.
//
// The controller needs either a pinned primary node or an allocator; when
// spec.pnode is set it wins, otherwise the configured iallocator is sent.
func Payload(inst *v1alpha1.Instance) (*CreatePayload, error) {
	p := &CreatePayload{
		Version:      1,
		Mode:         "create",
		InstanceName: inst.GetName(),
		DiskTemplate: inst.GetDiskTemplate(),
		Hypervisor:   inst.GetHypervisor(),
		OSType:       inst.GetOSType(),
		BeParams: BeParams{
			Memory: inst.Spec.MemoryMB,
			VCPUs:  inst.Spec.VCPUs,
		},
	}

	if inst.Spec.PNode != "" {
		p.PNode = inst.Spec.PNode
		p.SNode = inst.Spec.SNode
	} else {
		p.IAllocator = inst.GetIAllocator()
	}

	disks, err := translateDisks(inst.Spec.Disks)
	if err != nil {
		return nil, err
	}
	p.Disks = disks

	nics, err := translateNics(inst.Spec.Nics)
	if err != nil {
		return nil, err
	}
	p.Nics = nics

	osparams, err := translateOSParams(inst.Spec.OSParams)
	if err != nil {
		return nil, err
	}
	p.OSParams = osparams

	return p, nil
}

// translateDisks validates and flattens the disk list.
// Returns nil (field omitted) for an empty input.
func translateDisks(disks []v1alpha1.DiskSpec) ([]map[string]interface{}, error) {
	if len(disks) == 0 {
		return nil, nil
	}

	out := make([]map[string]interface{}, 0, len(disks))
	for i, disk := range disks {
		if disk.SizeMB <= 0 {
			return nil, fmt.Errorf("spec.disks[%d].size is required", i)
		}

		params := map[string]interface{}{
			"size": disk.SizeMB,
		}
		if disk.Mode != "" {
			params["mode"] = disk.Mode
		}
		if disk.Name != "" {
			params["name"] = disk.Name
		}
		if disk.Provider != "" {
			params["provider"] = disk.Provider
		}

		if disk.Provider == ExtProvider {
			// extstorage: everything outside the fixed set is forwarded
			// verbatim as provider-specific kwargs
			for k, v := range disk.Extra {
				params[k] = v
			}
		} else if len(disk.Extra) > 0 {
			return nil, fmt.Errorf("spec.disks[%d]: %q is not a valid disk parameter (allowed: %v, unless provider is %q)",
				i, firstKey(disk.Extra), diskKeys, ExtProvider)
		}

		out = append(out, params)
	}
	return out, nil
}

// translateNics validates and flattens the NIC list.
// Returns nil (field omitted) for an empty input.
func translateNics(nics []v1alpha1.NicSpec) ([]map[string]interface{}, error) {
	if len(nics) == 0 {
		return nil, nil
	}

	out := make([]map[string]interface{}, 0, len(nics))
	for i, nic := range nics {
		if len(nic.Extra) > 0 {
			return nil, fmt.Errorf("spec.nics[%d]: %q is not a valid nic parameter", i, firstKey(nic.Extra))
		}
		if nic.Mode == "" {
			return nil, fmt.Errorf("spec.nics[%d].mode is required", i)
		}
		switch nic.Mode {
		case v1alpha1.NicModeRouted, v1alpha1.NicModeBridged, v1alpha1.NicModeOpenvswitch:
		default:
			return nil, fmt.Errorf("spec.nics[%d].mode %q is not one of %s, %s, %s",
				i, nic.Mode, v1alpha1.NicModeRouted, v1alpha1.NicModeBridged, v1alpha1.NicModeOpenvswitch)
		}

		params := map[string]interface{}{
			"mode": nic.Mode,
		}
		if nic.Bridge != "" {
			params["bridge"] = nic.Bridge
		}
		if nic.Name != "" {
			params["name"] = nic.Name
		}
		if nic.IP != "" {
			params["ip"] = nic.IP
		}
		if nic.VLAN != 0 {
			params["vlan"] = nic.VLAN
		}
		if nic.MAC != "" {
			params["mac"] = nic.MAC
		}
		if nic.Link != "" {
			params["link"] = nic.Link
		}
		if nic.Network != "" {
			params["network"] = nic.Network
		}

		out = append(out, params)
	}
	return out, nil
}

// translateOSParams validates the OS parameter map.
// Values must be flat scalars: the OS create script interface has no notion
// of nested structures, and recursive flattening would invent semantics.
// Returns nil (field omitted) for an empty input.
func translateOSParams(params map[string]interface{}) (map[string]interface{}, error) {
	if len(params) == 0 {
		return nil, nil
	}

	out := make(map[string]interface{}, len(params))
	for k, v := range params {
		switch v.(type) {
		case map[string]interface{}, map[interface{}]interface{}, []interface{}:
			return nil, fmt.Errorf("spec.osParams[%q]: nested values are not allowed, use flat key/value pairs", k)
		}
		out[k] = v
	}
	return out, nil
}

// firstKey returns the lexicographically first key of m, so validation errors
// are deterministic.
func firstKey(m map[string]interface{}) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys[0]
}
