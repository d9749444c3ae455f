package inventory

// Field is a logical record field together with the column-name
// aliases it has appeared under. The collected schemas drifted over
// time (the VPC id alone shows up under four spellings), so lookups go
// through the alias list instead of a single column name.
//
// Aliases are tried in declared order and the first present, non-empty
// value wins. The ordering is a deliberate tie-break; changing it
// changes which value older snapshots resolve to.
type Field struct {
	Name    string
	Aliases []string
}

var (
	// FieldVPC is the owning VPC id on ELB, Gateway and RDS rows.
	FieldVPC = Field{Name: "VPC ID", Aliases: []string{"VpcId", "VPC ID", "VPC Id", "Vpc ID"}}

	// FieldDNS is the public DNS name on ELB rows.
	FieldDNS = Field{Name: "DNS Name", Aliases: []string{"DNSName", "DNS Name"}}

	// FieldSecurityGroups is the comma-separated security group list on
	// EC2 and RDS rows.
	FieldSecurityGroups = Field{Name: "Security Groups", Aliases: []string{"Security Groups", "SecurityGroups"}}

	FieldResourceID       = Field{Name: "Resource ID", Aliases: []string{"Resource ID"}}
	FieldResourceName     = Field{Name: "Resource Name", Aliases: []string{"Resource Name"}}
	FieldPrivateIP        = Field{Name: "Private IP", Aliases: []string{"Private IP"}}
	FieldLoadBalancerArns = Field{Name: "LoadBalancerArns", Aliases: []string{"LoadBalancerArns"}}
)

// Resolve looks the field up on a record, trying each alias in order.
// It returns false when no alias carries a non-empty value; callers
// must treat that as "cannot participate in matching", not as an empty
// match key.
func (f Field) Resolve(r Record) (string, bool) {
	for _, alias := range f.Aliases {
		if v, ok := r.Get(alias); ok && v != "" {
			return v, true
		}
	}
	return "", false
}
