package topology

import (
	"log/slog"
	"strings"

	"github.com/cloudinv/aws-dep-mapper/inventory"
	"github.com/cloudinv/aws-dep-mapper/match"
)

// Service names of the tables the builder consumes.
const (
	ServiceELB         = "ELB"
	ServiceGateway     = "Gateway"
	ServiceTargetGroup = "TargetGroup"
	ServiceEC2         = "EC2"
	ServiceRDS         = "RDS"
)

// Stats carries the diagnostic counters of one build. Lookup gaps never
// abort a build; they only show up here and in the output shape.
type Stats struct {
	LoadBalancers     int
	MissingVPC        int
	UnresolvedTargets int
}

// Builder assembles one Topology per load balancer record. It performs
// pure reads over the catalog and holds no state between Build calls
// beyond the stats of the last run.
type Builder struct {
	catalog *inventory.Catalog
	stats   Stats
}

// NewBuilder returns a builder over the given catalog.
func NewBuilder(catalog *inventory.Catalog) *Builder {
	return &Builder{catalog: catalog}
}

// Stats returns the counters of the most recent Build.
func (b *Builder) Stats() Stats {
	return b.stats
}

// Build returns one topology per record in the ELB table, in table
// order. An absent or empty ELB table yields an empty result, not an
// error; the exporter is responsible for the informational placeholder.
func (b *Builder) Build() []Topology {
	b.stats = Stats{}
	names := NewNameAllocator()

	elbs := b.catalog.Get(ServiceELB)
	if len(elbs) == 0 {
		slog.Info("no load balancer records in inventory", "services", b.catalog.Services())
		return nil
	}

	slog.Info("building load balancer topologies", "count", len(elbs))
	topologies := make([]Topology, 0, len(elbs))
	for _, rec := range elbs {
		b.stats.LoadBalancers++
		t := b.build(rec)
		t.Name = names.Allocate(t.Region, t.LoadBalancer.Name)
		topologies = append(topologies, t)
		slog.Debug("built topology",
			"name", t.Name,
			"gateway_resolved", t.Gateway.Resolved(),
			"target_groups", len(t.TargetGroups))
	}
	return topologies
}

func (b *Builder) build(lb inventory.Record) Topology {
	name := cell(lb, "Resource Name")
	id := cell(lb, "Resource ID")
	region := cell(lb, "Region")

	vpc, ok := inventory.FieldVPC.Resolve(lb)
	gateway := UnresolvedGateway()
	if ok {
		gateway = b.gatewayForVPC(region, vpc)
	} else {
		slog.Warn("no VPC id on load balancer record", "load_balancer", name)
		b.stats.MissingVPC++
		vpc = NA
	}

	dns, _ := inventory.FieldDNS.Resolve(lb)
	if dns == "" {
		dns = NA
	}

	return Topology{
		Region: region,
		VPC:    vpc,
		LoadBalancer: LoadBalancer{
			Name:   name,
			ID:     id,
			Type:   cell(lb, "Type"),
			DNS:    dns,
			Scheme: cell(lb, "Scheme"),
			Region: region,
			VPC:    vpc,
		},
		Gateway:      gateway,
		TargetGroups: b.targetGroups(id),
	}
}

// gatewayForVPC finds the single best-matching gateway for the VPC:
// same region, same VPC id under any of its historical column names.
func (b *Builder) gatewayForVPC(region, vpc string) Gateway {
	rec, ok := match.ScopeExact(b.catalog.Get(ServiceGateway), region, inventory.FieldVPC, vpc)
	if !ok {
		return UnresolvedGateway()
	}
	return Gateway{
		Name:           cell(rec, "Resource Name"),
		ID:             cell(rec, "Resource ID"),
		Type:           cell(rec, "Type"),
		State:          cell(rec, "State"),
		VPCAttachments: cell(rec, "VPC Attachments"),
	}
}

// targetGroups returns every target group whose LoadBalancerArns cell
// mentions the load balancer's ARN, each with its resolved instances
// and databases.
func (b *Builder) targetGroups(lbID string) []TargetGroup {
	recs := match.AllContaining(b.catalog.Get(ServiceTargetGroup), inventory.FieldLoadBalancerArns, lbID)

	var groups []TargetGroup
	for _, rec := range recs {
		targets, _ := rec.Get("Targets")
		instances := b.instances(targets)
		groups = append(groups, TargetGroup{
			Name:                cell(rec, "Resource Name"),
			ID:                  cell(rec, "Resource ID"),
			Protocol:            cell(rec, "Protocol"),
			Port:                cell(rec, "Port"),
			HealthCheckProtocol: cell(rec, "HealthCheckProtocol"),
			TargetType:          cell(rec, "TargetType"),
			Instances:           instances,
			Databases:           b.databases(instances),
		})
	}
	return groups
}

// instanceFields is the fixed lookup order for target identifiers: a
// target entry can be an instance id, a name, or a private IP.
var instanceFields = []inventory.Field{
	inventory.FieldResourceID,
	inventory.FieldResourceName,
	inventory.FieldPrivateIP,
}

// instances resolves each entry of a Targets cell against the EC2
// table. Unresolved identifiers are dropped and counted, not fatal.
func (b *Builder) instances(targetsCell string) []Instance {
	ec2 := b.catalog.Get(ServiceEC2)

	var instances []Instance
	for _, target := range parseTargets(targetsCell) {
		rec, ok := resolveInstance(ec2, target.ID)
		if !ok {
			slog.Debug("target does not match any instance record", "target", target.ID)
			b.stats.UnresolvedTargets++
			continue
		}
		sgs, _ := inventory.FieldSecurityGroups.Resolve(rec)
		instances = append(instances, Instance{
			Name:           cell(rec, "Resource Name"),
			ID:             cell(rec, "Resource ID"),
			Type:           cell(rec, "Instance Type"),
			State:          cell(rec, "State"),
			PrivateIP:      cell(rec, "Private IP"),
			SecurityGroups: sgs,
			TargetHealth:   target.Health,
		})
	}
	return instances
}

// resolveInstance tries containment over Resource ID, Resource Name and
// Private IP in that order. The first field with any match wins, then
// the first matching record.
func resolveInstance(ec2 inventory.Table, id string) (inventory.Record, bool) {
	for _, field := range instanceFields {
		if rec, ok := match.Containing(ec2, field, id); ok {
			return rec, true
		}
	}
	return inventory.Record{}, false
}

// databases returns the RDS records sharing at least one security group
// with any of the given instances. Zero overlap is normal.
func (b *Builder) databases(instances []Instance) []Database {
	if len(instances) == 0 {
		return nil
	}
	tokens := make(map[string]struct{})
	for _, inst := range instances {
		for t := range match.Tokens(inst.SecurityGroups) {
			tokens[t] = struct{}{}
		}
	}

	var databases []Database
	for _, rec := range match.Overlapping(b.catalog.Get(ServiceRDS), inventory.FieldSecurityGroups, tokens) {
		sgs, _ := inventory.FieldSecurityGroups.Resolve(rec)
		databases = append(databases, Database{
			Name:           cell(rec, "Resource Name"),
			ID:             cell(rec, "Resource ID"),
			Engine:         cell(rec, "Engine"),
			Status:         cell(rec, "Status"),
			Endpoint:       cell(rec, "Endpoint"),
			SecurityGroups: sgs,
		})
	}
	return databases
}

// targetRef is one parsed entry of a Targets cell.
type targetRef struct {
	ID     string
	Health string
}

// parseTargets splits a Targets cell into its newline-separated
// entries. Each entry is "<identifier> (<health>)" or a bare
// identifier when no health state was recorded.
func parseTargets(cell string) []targetRef {
	var refs []targetRef
	for _, line := range strings.Split(cell, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.Split(line, " (")
		ref := targetRef{ID: parts[0], Health: NA}
		if len(parts) > 1 {
			ref.Health = strings.TrimRight(parts[1], ")")
		}
		refs = append(refs, ref)
	}
	return refs
}

// cell reads a plain column off a record, substituting the placeholder
// for absent or empty values.
func cell(r inventory.Record, column string) string {
	if v, ok := r.Get(column); ok && v != "" {
		return v
	}
	return NA
}
