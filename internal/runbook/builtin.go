// Package runbook supplies operational context for incident analysis.
//
// Resolution order: remote endpoint (if configured), local markdown files,
// built-in fallbacks. A context string is always produced.
package runbook

import "github.com/aegisops/aegis/internal/model"

// LatencyRunbook returns the built-in runbook for latency incidents.
func LatencyRunbook() string {
	return `## Latency Incident Runbook

**Investigation Steps:**
- Check network latency to dependencies
- Review recent query execution times
- Check for lock contention in database
- Verify index usage on slow queries
- Check connection pool saturation

**Common Remediation:**
- Run diagnostics to identify slow queries
- Optimize indexes if needed
- Scale resources if overloaded`
}

// StorageRunbook returns the built-in runbook for storage incidents.
func StorageRunbook() string {
	return `## Storage Incident Runbook

**Investigation Steps:**
- Check disk space usage on all volumes
- Review log rotation configuration
- Identify large files or orphaned data
- Check for runaway log growth
- Verify backup processes not consuming space

**Common Remediation:**
- Clear old logs if log rotation failed
- Remove temporary files
- Archive or compress old data
- Increase disk space if needed`
}

// AuthRunbook returns the built-in runbook for authentication incidents.
func AuthRunbook() string {
	return `## Authentication Incident Runbook

**Investigation Steps:**
- Verify authentication service health
- Check token expiration policies
- Review recent failed login attempts
- Check for service outages
- Verify certificate validity
- Check API key rotation

**Common Remediation:**
- Restart authentication service if unhealthy
- Check for expired credentials
- Review recent deployment changes
- Escalate if unclear cause`
}

// GeneralRunbook returns the built-in runbook for uncategorized incidents.
func GeneralRunbook() string {
	return `## General Incident Runbook

**Investigation Steps:**
- Gather complete system metrics
- Check application logs for errors
- Verify all critical services are running
- Review recent deployments or changes
- Check for known issues or alerts

**Common Remediation:**
- Run comprehensive diagnostics
- Escalate to human if unclear
- Document findings for future reference`
}

// Builtin returns the built-in runbook for the given category.
// Unknown categories fall back to the general runbook.
func Builtin(category model.Category) string {
	switch category {
	case model.CategoryLatency:
		return LatencyRunbook()
	case model.CategoryStorage:
		return StorageRunbook()
	case model.CategoryAuth:
		return AuthRunbook()
	default:
		return GeneralRunbook()
	}
}
