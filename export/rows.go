// Package export flattens topologies into the row layout of the
// dependency workbook and writes the workbook itself.
package export

import (
	"fmt"

	"github.com/cloudinv/aws-dep-mapper/topology"
)

// Row is one line of a topology sheet.
type Row struct {
	ResourceType   string
	Name           string
	ID             string
	AdditionalInfo string
}

// Header is the column order of every sheet.
var Header = []string{"Resource Type", "Name", "ID", "Additional Info"}

// Rows flattens a topology into its sheet rows: the gateway (when
// resolved), the load balancer, then each target group followed by its
// instances and databases.
func Rows(t topology.Topology) []Row {
	var rows []Row

	if t.Gateway.Resolved() {
		rows = append(rows, Row{
			ResourceType: "Internet Gateway",
			Name:         t.Gateway.Name,
			ID:           t.Gateway.ID,
			AdditionalInfo: fmt.Sprintf("Type: %s, State: %s, VPC Attachments: %s",
				t.Gateway.Type, t.Gateway.State, t.Gateway.VPCAttachments),
		})
	}

	rows = append(rows, Row{
		ResourceType: "Load Balancer",
		Name:         t.LoadBalancer.Name,
		ID:           t.LoadBalancer.ID,
		AdditionalInfo: fmt.Sprintf("Type: %s, Scheme: %s, DNS: %s",
			t.LoadBalancer.Type, schemeInfo(t.LoadBalancer.Scheme), t.LoadBalancer.DNS),
	})

	for _, tg := range t.TargetGroups {
		rows = append(rows, Row{
			ResourceType: "Target Group",
			Name:         tg.Name,
			ID:           tg.ID,
			AdditionalInfo: fmt.Sprintf("Protocol: %s, Port: %s, Health Check: %s, Target Type: %s",
				tg.Protocol, tg.Port, tg.HealthCheckProtocol, tg.TargetType),
		})
		for _, inst := range tg.Instances {
			rows = append(rows, Row{
				ResourceType: "Instance",
				Name:         inst.Name,
				ID:           inst.ID,
				AdditionalInfo: fmt.Sprintf("Type: %s, State: %s, IP: %s, Target Health: %s",
					inst.Type, inst.State, inst.PrivateIP, inst.TargetHealth),
			})
		}
		for _, db := range tg.Databases {
			rows = append(rows, Row{
				ResourceType: "Database",
				Name:         db.Name,
				ID:           db.ID,
				AdditionalInfo: fmt.Sprintf("Engine: %s, Status: %s, Endpoint: %s",
					db.Engine, db.Status, db.Endpoint),
			})
		}
	}

	return rows
}

// PlaceholderRows is the informational row set emitted when the
// inventory contained no load balancers at all.
func PlaceholderRows() []Row {
	return []Row{{
		ResourceType:   "Information",
		Name:           "No Load Balancers Found",
		ID:             topology.NA,
		AdditionalInfo: "No load balancers were found in the AWS inventory.",
	}}
}

func schemeInfo(scheme string) string {
	if scheme == "internet-facing" {
		return "Internet-Facing"
	}
	return "Internal"
}
