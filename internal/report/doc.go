// Package report assembles the persisted artifact of a reconciliation
// run: a JSON document carrying the run identity, the option set that
// produced it, aggregate counts, and the missing and uncertain units a
// recovery pass would act on. It also renders the console summary table.
package report
