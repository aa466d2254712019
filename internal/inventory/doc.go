// Package inventory turns NetBox records into an Ansible inventory.
//
// For each import statement of a Plan, the Builder fetches the records,
// attaches sub-imports, files each record's identifier into the groups its
// group_by expressions yield (GroupBy) and evaluates its host variables
// (AssembleHostVars). Records are evaluated concurrently; their results are
// merged in record order once the statement is done.
//
// Evaluation problems never abort a build: the offending group or variable
// is skipped and a warning is logged. Only fetch errors are fatal.
package inventory
