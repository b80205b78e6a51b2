// Package preflight provides readiness checks for the services and paths
// episodegap depends on.
//
// The CLI "episodegap doctor" command runs RunAll to display each check.
// Individual checks (CheckPlex, CheckTVDB, CheckDirectoryAccess) are usable
// on their own and never return errors; failures are reported in Result.
package preflight
