// ABOUTME: Live vCenter inventory source built on govmomi
// ABOUTME: Collects host and VM capacity figures per cluster, optionally via an SSH+SOCKS5 jump host

package inventory

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	proxy "github.com/cloudfoundry/socks5-proxy"
	"github.com/rnelson0/vsphere-capacity-report/capacity"
	"github.com/vmware/govmomi"
	"github.com/vmware/govmomi/find"
	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/session"
	"github.com/vmware/govmomi/vim25"
	"github.com/vmware/govmomi/vim25/mo"
	"github.com/vmware/govmomi/vim25/soap"
	"github.com/vmware/govmomi/vim25/types"
	"golang.org/x/sync/errgroup"
)

// defaultHostFanout caps concurrent host property reads per snapshot.
const defaultHostFanout = 8

// VSphereCredentials holds vCenter connection info.
type VSphereCredentials struct {
	Host       string
	Username   string
	Password   string
	Datacenter string
	Insecure   bool

	// AllProxy optionally routes SOAP traffic through an SSH jump host:
	// ssh+socks5://user@host:port?private-key=/path/to/key
	AllProxy string

	// HostFanout limits concurrent per-host property collection.
	// Zero means the default.
	HostFanout int
}

// VSphereSource is an inventory source backed by a live vCenter.
type VSphereSource struct {
	creds VSphereCredentials

	mu         sync.Mutex
	client     *govmomi.Client
	finder     *find.Finder
	datacenter *object.Datacenter
}

// NewVSphereSource creates a source; no connection is made until the first
// inventory call.
func NewVSphereSource(creds VSphereCredentials) *VSphereSource {
	return &VSphereSource{creds: creds}
}

func (v *VSphereSource) Name() string { return "vsphere" }

// Close logs out of vCenter if a session was established.
func (v *VSphereSource) Close(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.client == nil {
		return nil
	}
	err := v.client.Logout(ctx)
	v.client = nil
	v.finder = nil
	return err
}

// ensureConnected establishes the vCenter session on first use and keeps
// it for the lifetime of the source.
func (v *VSphereSource) ensureConnected(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.client != nil && v.client.Valid() {
		return nil
	}

	host := v.creds.Host
	if !strings.HasPrefix(host, "https://") && !strings.HasPrefix(host, "http://") {
		host = "https://" + host
	}

	u, err := url.Parse(host + "/sdk")
	if err != nil {
		return fmt.Errorf("invalid vCenter URL '%s': %w", v.creds.Host, err)
	}
	u.User = url.UserPassword(v.creds.Username, v.creds.Password)

	client, err := v.dial(ctx, u)
	if err != nil {
		return connectError(v.creds.Host, err)
	}

	finder := find.NewFinder(client.Client, true)

	dc, err := finder.Datacenter(ctx, v.creds.Datacenter)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return fmt.Errorf("%w: datacenter '%s' not found - verify the datacenter name", ErrUnavailable, v.creds.Datacenter)
		}
		return fmt.Errorf("%w: error accessing datacenter '%s': %v", ErrUnavailable, v.creds.Datacenter, err)
	}
	finder.SetDatacenter(dc)

	v.client = client
	v.finder = finder
	v.datacenter = dc

	slog.Info("vSphere connected successfully")
	slog.Debug("vSphere connection details", "host", v.creds.Host, "datacenter", v.creds.Datacenter)
	return nil
}

// dial builds the govmomi client, routing through the SOCKS5 proxy when one
// is configured.
func (v *VSphereSource) dial(ctx context.Context, u *url.URL) (*govmomi.Client, error) {
	if v.creds.AllProxy == "" {
		return govmomi.NewClient(ctx, u, v.creds.Insecure)
	}

	dialFn := createSOCKS5DialContextFunc(v.creds.AllProxy)
	if dialFn == nil {
		return nil, fmt.Errorf("invalid proxy URL %q", v.creds.AllProxy)
	}

	soapClient := soap.NewClient(u, v.creds.Insecure)
	if transport, ok := soapClient.Transport.(*http.Transport); ok {
		transport.DialContext = dialFn
	}

	vimClient, err := vim25.NewClient(ctx, soapClient)
	if err != nil {
		return nil, err
	}

	client := &govmomi.Client{
		Client:         vimClient,
		SessionManager: session.NewManager(vimClient),
	}
	if err := client.Login(ctx, u.User); err != nil {
		return nil, err
	}
	return client, nil
}

// connectError translates raw transport failures into actionable messages.
func connectError(host string, err error) error {
	errStr := err.Error()
	switch {
	case strings.Contains(errStr, "connection refused"):
		return fmt.Errorf("%w: connection refused to vCenter at %s - verify the host is reachable", ErrUnavailable, host)
	case strings.Contains(errStr, "no such host"):
		return fmt.Errorf("%w: cannot resolve vCenter hostname '%s' - verify DNS", ErrUnavailable, host)
	case strings.Contains(errStr, "401"), strings.Contains(errStr, "Cannot complete login"):
		return fmt.Errorf("%w: authentication failed - verify username and password", ErrUnavailable)
	case strings.Contains(errStr, "context deadline exceeded"), strings.Contains(errStr, "timeout"):
		return fmt.Errorf("%w: connection timeout to vCenter at %s - check network connectivity", ErrUnavailable, host)
	case strings.Contains(errStr, "certificate"), strings.Contains(errStr, "x509"):
		return fmt.Errorf("%w: SSL certificate error connecting to %s - try setting VSPHERE_INSECURE=true", ErrUnavailable, host)
	default:
		return fmt.Errorf("%w: failed to connect to vCenter at %s: %v", ErrUnavailable, host, err)
	}
}

// Clusters lists compute cluster names in the datacenter, sorted.
func (v *VSphereSource) Clusters(ctx context.Context) ([]string, error) {
	if err := v.ensureConnected(ctx); err != nil {
		return nil, err
	}

	clusters, err := v.finder.ClusterComputeResourceList(ctx, "*")
	if err != nil {
		// An empty datacenter is an answer, not a failure.
		var nf *find.NotFoundError
		if errors.As(err, &nf) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing clusters: %w", err)
	}

	names := make([]string, len(clusters))
	for i, c := range clusters {
		names[i] = c.Name()
	}
	sort.Strings(names)
	return names, nil
}

// Snapshot collects host and VM inventory for one cluster. Host order
// follows the cluster's host list as vCenter returns it. Hosts that are
// powered off or in maintenance mode contribute no capacity and are
// excluded.
func (v *VSphereSource) Snapshot(ctx context.Context, cluster string) (capacity.ClusterSnapshot, error) {
	if err := v.ensureConnected(ctx); err != nil {
		return capacity.ClusterSnapshot{}, err
	}

	ccr, err := v.finder.ClusterComputeResource(ctx, cluster)
	if err != nil {
		var nf *find.NotFoundError
		if errors.As(err, &nf) {
			return capacity.ClusterSnapshot{}, &ClusterNotFoundError{Cluster: cluster}
		}
		return capacity.ClusterSnapshot{}, fmt.Errorf("locating cluster '%s': %w", cluster, err)
	}

	var clusterMo mo.ClusterComputeResource
	if err := ccr.Properties(ctx, ccr.Reference(), []string{"host"}, &clusterMo); err != nil {
		return capacity.ClusterSnapshot{}, fmt.Errorf("getting cluster properties: %w", err)
	}

	fanout := v.creds.HostFanout
	if fanout <= 0 {
		fanout = defaultHostFanout
	}

	// Collect per host in parallel, but keep results indexed so the
	// snapshot preserves vCenter's host order.
	results := make([]*hostInventory, len(clusterMo.Host))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanout)

	for i, hostRef := range clusterMo.Host {
		g.Go(func() error {
			inv, err := v.collectHost(gctx, hostRef)
			if err != nil {
				return err
			}
			results[i] = inv
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return capacity.ClusterSnapshot{}, fmt.Errorf("collecting cluster '%s': %w", cluster, err)
	}

	snap := capacity.ClusterSnapshot{Cluster: cluster}
	for _, inv := range results {
		if inv == nil {
			continue // powered off or in maintenance
		}
		sample := inv.sample
		sample.VMCount = len(inv.vms)
		for _, vm := range inv.vms {
			sample.VCPUCount += vm.VCPUs
		}
		snap.Hosts = append(snap.Hosts, sample)
		snap.VMs = append(snap.VMs, inv.vms...)
	}

	slog.Debug("vSphere snapshot collected", "cluster", cluster, "hosts", len(snap.Hosts), "vms", len(snap.VMs))
	return snap, nil
}

// hostInventory pairs a host sample with the VMs found on it.
type hostInventory struct {
	sample capacity.HostSample
	vms    []capacity.VMSample
}

// collectHost reads one host's summary plus its VM list. Returns nil for
// hosts that contribute no usable capacity.
func (v *VSphereSource) collectHost(ctx context.Context, hostRef types.ManagedObjectReference) (*hostInventory, error) {
	host := object.NewHostSystem(v.client.Client, hostRef)

	var hostMo mo.HostSystem
	if err := host.Properties(ctx, host.Reference(), []string{"name", "summary", "runtime", "vm"}, &hostMo); err != nil {
		return nil, fmt.Errorf("getting host properties: %w", err)
	}

	if hostMo.Runtime.PowerState != types.HostSystemPowerStatePoweredOn || hostMo.Runtime.InMaintenanceMode {
		slog.Debug("skipping host", "host", hostMo.Name, "power_state", hostMo.Runtime.PowerState, "maintenance", hostMo.Runtime.InMaintenanceMode)
		return nil, nil
	}

	inv := &hostInventory{sample: hostSampleFromSummary(hostMo)}

	for _, vmRef := range hostMo.Vm {
		vm := object.NewVirtualMachine(v.client.Client, vmRef)
		var vmMo mo.VirtualMachine
		if err := vm.Properties(ctx, vm.Reference(), []string{"name", "config"}, &vmMo); err != nil {
			// Unreadable VMs (mid-migration, stale refs) are skipped.
			slog.Debug("skipping unreadable VM", "host", hostMo.Name, "error", err)
			continue
		}
		if sample, ok := vmSampleFromConfig(vmMo, hostMo.Name); ok {
			inv.vms = append(inv.vms, sample)
		}
	}

	return inv, nil
}

// hostSampleFromSummary maps collected host properties onto a sample.
// vCenter reports memory capacity in bytes and quick-stats usage in MB.
func hostSampleFromSummary(h mo.HostSystem) capacity.HostSample {
	sample := capacity.HostSample{Name: h.Name}

	if hw := h.Summary.Hardware; hw != nil {
		sample.Sockets = int(hw.NumCpuPkgs)
		sample.Cores = int(hw.NumCpuCores)
		sample.Threads = int(hw.NumCpuThreads)
		sample.MemoryTotalGB = float64(hw.MemorySize) / (1024 * 1024 * 1024)
		sample.CPUModel = hw.CpuModel
	}

	sample.MemoryUsedGB = float64(h.Summary.QuickStats.OverallMemoryUsage) / 1024
	return sample
}

// vmSampleFromConfig maps VM config onto a sample. Templates hold no
// schedulable allocation and report false.
func vmSampleFromConfig(vm mo.VirtualMachine, hostName string) (capacity.VMSample, bool) {
	if vm.Config == nil || vm.Config.Template {
		return capacity.VMSample{}, false
	}
	return capacity.VMSample{
		Name:     vm.Name,
		VCPUs:    int(vm.Config.Hardware.NumCPU),
		MemoryGB: float64(vm.Config.Hardware.MemoryMB) / 1024,
		Host:     hostName,
	}, true
}

// createSOCKS5DialContextFunc creates a dial function for SSH+SOCKS5 proxy
// connections. Supports format: ssh+socks5://user@host:port?private-key=/path/to/key
func createSOCKS5DialContextFunc(allProxy string) func(ctx context.Context, network, address string) (net.Conn, error) {
	allProxy = strings.TrimPrefix(allProxy, "ssh+")

	proxyURL, err := url.Parse(allProxy)
	if err != nil {
		slog.Error("Failed to parse proxy URL", "error", err)
		return nil
	}

	queryMap, err := url.ParseQuery(proxyURL.RawQuery)
	if err != nil {
		slog.Error("Failed to parse proxy query params", "error", err)
		return nil
	}

	username := ""
	if proxyURL.User != nil {
		username = proxyURL.User.Username()
	}

	proxySSHKeyPath := queryMap.Get("private-key")
	if proxySSHKeyPath == "" {
		slog.Error("proxy URL missing required 'private-key' query param")
		return nil
	}

	proxySSHKey, err := os.ReadFile(proxySSHKeyPath)
	if err != nil {
		slog.Error("Failed to read SSH private key", "path", proxySSHKeyPath, "error", err)
		return nil
	}

	socks5Proxy := proxy.NewSocks5Proxy(proxy.NewHostKey(), log.Default(), 1*time.Minute)

	var (
		dialer proxy.DialFunc
		mut    sync.RWMutex
	)

	return func(ctx context.Context, network, address string) (net.Conn, error) {
		mut.RLock()
		haveDialer := dialer != nil
		mut.RUnlock()

		if haveDialer {
			return dialer(network, address)
		}

		mut.Lock()
		defer mut.Unlock()
		if dialer == nil {
			proxyDialer, err := socks5Proxy.Dialer(username, string(proxySSHKey), proxyURL.Host)
			if err != nil {
				return nil, fmt.Errorf("error creating SOCKS5 dialer: %w", err)
			}
			dialer = proxyDialer
		}
		return dialer(network, address)
	}
}
