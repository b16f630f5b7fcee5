package domain

// ComponentType is the closed set of architectural component classes.
type ComponentType string

const (
	ComponentTypeWeb      ComponentType = "web"
	ComponentTypeApp      ComponentType = "app"
	ComponentTypeData     ComponentType = "data"
	ComponentTypeNetwork  ComponentType = "network"
	ComponentTypePlatform ComponentType = "platform"
	ComponentTypeSecurity ComponentType = "security"
)

// Valid reports whether t is one of the known component types.
func (t ComponentType) Valid() bool {
	switch t {
	case ComponentTypeWeb, ComponentTypeApp, ComponentTypeData,
		ComponentTypeNetwork, ComponentTypePlatform, ComponentTypeSecurity:
		return true
	}
	return false
}

// Severity orders findings from critical down to low.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Rank returns a sortable weight, higher is more severe.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// ResidualRisk maps a finding severity to the risk remaining after the
// suggested fix is applied.
func (s Severity) ResidualRisk() string {
	switch s {
	case SeverityCritical:
		return "High"
	case SeverityHigh:
		return "Medium"
	case SeverityMedium:
		return "Low"
	case SeverityLow:
		return "Very Low"
	default:
		return "Unknown"
	}
}

// Criticality is the declared business criticality of a component.
type Criticality string

const (
	CriticalityCritical Criticality = "critical"
	CriticalityHigh     Criticality = "high"
	CriticalityMedium   Criticality = "medium"
	CriticalityLow      Criticality = "low"
)

// AttackType classifies an attack path by its primary technique.
type AttackType string

const (
	AttackTypeDDoS                AttackType = "ddos"
	AttackTypeInjection           AttackType = "injection"
	AttackTypeExfiltration        AttackType = "exfiltration"
	AttackTypeLateralMovement     AttackType = "lateral-movement"
	AttackTypePrivilegeEscalation AttackType = "privilege-escalation"
	AttackTypeMisconfiguration    AttackType = "misconfiguration"
	AttackTypeCredentialTheft     AttackType = "credential-theft"
)

// ThreatCategory is the STRIDE category an attack path maps to.
type ThreatCategory string

const (
	ThreatSpoofing              ThreatCategory = "spoofing"
	ThreatTampering             ThreatCategory = "tampering"
	ThreatRepudiation           ThreatCategory = "repudiation"
	ThreatInformationDisclosure ThreatCategory = "information-disclosure"
	ThreatDenialOfService       ThreatCategory = "denial-of-service"
	ThreatElevationOfPrivilege  ThreatCategory = "elevation-of-privilege"
)

// LogLevel represents log levels
type LogLevel string

const (
	LogLevelDebug LogLevel = "DEBUG"
	LogLevelInfo  LogLevel = "INFO"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelError LogLevel = "ERROR"
)
