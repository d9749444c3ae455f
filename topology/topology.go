// Package topology reconstructs, for every load balancer in a
// snapshot, the chain of resources behind it: internet gateway, target
// groups, the instances registered in them, and the databases those
// instances can reach through shared security groups.
package topology

// NA is the placeholder for any link the matching could not establish.
// Unresolved links are always represented explicitly so that consumers
// can tell "no gateway" apart from "gateway lookup was skipped".
const NA = "N/A"

// LoadBalancer is the entry point a topology is scoped to.
type LoadBalancer struct {
	Name   string
	ID     string
	Type   string
	DNS    string
	Scheme string
	Region string
	VPC    string
}

// Gateway is the internet gateway serving the load balancer's VPC.
type Gateway struct {
	Name           string
	ID             string
	Type           string
	State          string
	VPCAttachments string
}

// UnresolvedGateway returns the placeholder used when no gateway could
// be matched. Not a fatal condition.
func UnresolvedGateway() Gateway {
	return Gateway{Name: NA, ID: NA, Type: NA, State: NA, VPCAttachments: NA}
}

// Resolved reports whether the gateway points at an actual record.
func (g Gateway) Resolved() bool {
	return g.ID != NA
}

// Instance is a compute record registered in a target group, together
// with the health state captured for that specific membership.
type Instance struct {
	Name           string
	ID             string
	Type           string
	State          string
	PrivateIP      string
	SecurityGroups string
	TargetHealth   string
}

// Database is a data store sharing at least one security group with a
// resolved instance of the same target group.
type Database struct {
	Name           string
	ID             string
	Engine         string
	Status         string
	Endpoint       string
	SecurityGroups string
}

// TargetGroup carries its own resolved instances and databases.
type TargetGroup struct {
	Name                string
	ID                  string
	Protocol            string
	Port                string
	HealthCheckProtocol string
	TargetType          string
	Instances           []Instance
	Databases           []Database
}

// Topology is the resolved dependency chain for one load balancer.
// Constructed fresh per run and never mutated afterwards.
type Topology struct {
	// Name is the allocator-assigned output identifier (sheet name).
	Name         string
	Region       string
	VPC          string
	LoadBalancer LoadBalancer
	Gateway      Gateway
	TargetGroups []TargetGroup
}
