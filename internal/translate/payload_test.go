package translate

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rrey/collection-ganeti/api/v1alpha1"
)

func baseInstance() *v1alpha1.Instance {
	inst := v1alpha1.NewInstance("vm01.example.com")
	inst.Spec.MemoryMB = 2048
	inst.Spec.VCPUs = 2
	return inst
}

func TestPayload_Defaults(t *testing.T) {
	p, err := Payload(baseInstance())

	require.NoError(t, err)
	assert.Equal(t, 1, p.Version)
	assert.Equal(t, "create", p.Mode)
	assert.Equal(t, "vm01.example.com", p.InstanceName)
	assert.Equal(t, "plain", p.DiskTemplate)
	assert.Equal(t, "kvm", p.Hypervisor)
	assert.Equal(t, "debootstrap+default", p.OSType)
	assert.Equal(t, 2048, p.BeParams.Memory)
	assert.Equal(t, 2, p.BeParams.VCPUs)

	// No nodes pinned: the allocator places the instance
	assert.Equal(t, "hail", p.IAllocator)
	assert.Empty(t, p.PNode)
}

func TestPayload_PinnedNodesWinOverAllocator(t *testing.T) {
	inst := baseInstance()
	inst.Spec.PNode = "node1.example.com"
	inst.Spec.SNode = "node2.example.com"

	p, err := Payload(inst)

	require.NoError(t, err)
	assert.Equal(t, "node1.example.com", p.PNode)
	assert.Equal(t, "node2.example.com", p.SNode)
	assert.Empty(t, p.IAllocator)
}

func TestPayload_EmptyListsAreOmitted(t *testing.T) {
	p, err := Payload(baseInstance())
	require.NoError(t, err)

	assert.Nil(t, p.Disks)
	assert.Nil(t, p.Nics)
	assert.Nil(t, p.OSParams)

	// The serialized form must not carry the empty fields at all
	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"disks"`)
	assert.NotContains(t, string(data), `"nics"`)
	assert.NotContains(t, string(data), `"osparams"`)
}

func TestPayload_Disks(t *testing.T) {
	inst := baseInstance()
	inst.Spec.Disks = []v1alpha1.DiskSpec{
		{SizeMB: 10240, Mode: "rw", Name: "root"},
		{SizeMB: 51200},
	}

	p, err := Payload(inst)

	require.NoError(t, err)
	require.Len(t, p.Disks, 2)
	assert.Equal(t, map[string]interface{}{"size": 10240, "mode": "rw", "name": "root"}, p.Disks[0])
	assert.Equal(t, map[string]interface{}{"size": 51200}, p.Disks[1])
}

func TestPayload_DiskSizeRequired(t *testing.T) {
	inst := baseInstance()
	inst.Spec.Disks = []v1alpha1.DiskSpec{
		{SizeMB: 10240},
		{Mode: "rw"},
	}

	_, err := Payload(inst)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "spec.disks[1].size is required")
}

func TestPayload_ExtProviderForwardsExtraKeys(t *testing.T) {
	inst := baseInstance()
	inst.Spec.DiskTemplate = "ext"
	inst.Spec.Disks = []v1alpha1.DiskSpec{
		{
			SizeMB:   10240,
			Provider: "ext",
			Extra: map[string]interface{}{
				"volume_group": "xenvg",
				"stripes":      4,
			},
		},
	}

	p, err := Payload(inst)

	require.NoError(t, err)
	require.Len(t, p.Disks, 1)
	assert.Equal(t, "xenvg", p.Disks[0]["volume_group"])
	assert.Equal(t, 4, p.Disks[0]["stripes"])
	assert.Equal(t, "ext", p.Disks[0]["provider"])
}

func TestPayload_UnknownDiskKeyRejectedWithoutExtProvider(t *testing.T) {
	inst := baseInstance()
	inst.Spec.Disks = []v1alpha1.DiskSpec{
		{
			SizeMB: 10240,
			Extra:  map[string]interface{}{"volume_group": "xenvg"},
		},
	}

	_, err := Payload(inst)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "spec.disks[0]")
	assert.Contains(t, err.Error(), `"volume_group"`)
}

func TestPayload_Nics(t *testing.T) {
	inst := baseInstance()
	inst.Spec.Nics = []v1alpha1.NicSpec{
		{Mode: v1alpha1.NicModeBridged, Bridge: "br0", IP: "192.0.2.10", VLAN: 100},
		{Mode: v1alpha1.NicModeRouted, Link: "eth1", Network: "backbone"},
	}

	p, err := Payload(inst)

	require.NoError(t, err)
	require.Len(t, p.Nics, 2)
	assert.Equal(t, map[string]interface{}{
		"mode": "bridged", "bridge": "br0", "ip": "192.0.2.10", "vlan": 100,
	}, p.Nics[0])
	assert.Equal(t, map[string]interface{}{
		"mode": "routed", "link": "eth1", "network": "backbone",
	}, p.Nics[1])
}

func TestPayload_NicModeRequired(t *testing.T) {
	inst := baseInstance()
	inst.Spec.Nics = []v1alpha1.NicSpec{{Bridge: "br0"}}

	_, err := Payload(inst)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "spec.nics[0].mode is required")
}

func TestPayload_NicModeValidated(t *testing.T) {
	inst := baseInstance()
	inst.Spec.Nics = []v1alpha1.NicSpec{{Mode: "tunneled"}}

	_, err := Payload(inst)

	require.Error(t, err)
	assert.Contains(t, err.Error(), `spec.nics[0].mode "tunneled"`)
}

func TestPayload_UnknownNicKeyRejected(t *testing.T) {
	inst := baseInstance()
	inst.Spec.Nics = []v1alpha1.NicSpec{
		{
			Mode:  v1alpha1.NicModeBridged,
			Extra: map[string]interface{}{"firewall": "on"},
		},
	}

	_, err := Payload(inst)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "spec.nics[0]")
	assert.Contains(t, err.Error(), `"firewall"`)
}

func TestPayload_OSParamsFlatScalars(t *testing.T) {
	inst := baseInstance()
	inst.Spec.OSParams = map[string]interface{}{
		"release": "bookworm",
		"parts":   3,
		"verbose": true,
	}

	p, err := Payload(inst)

	require.NoError(t, err)
	assert.Equal(t, "bookworm", p.OSParams["release"])
	assert.Equal(t, 3, p.OSParams["parts"])
	assert.Equal(t, true, p.OSParams["verbose"])
}

func TestPayload_NestedOSParamsRejected(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
	}{
		{name: "map", value: map[string]interface{}{"inner": 1}},
		{name: "list", value: []interface{}{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst := baseInstance()
			inst.Spec.OSParams = map[string]interface{}{"bad": tt.value}

			_, err := Payload(inst)

			require.Error(t, err)
			assert.Contains(t, err.Error(), `spec.osParams["bad"]`)
		})
	}
}
