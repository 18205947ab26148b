// Package results reads Lighthouse CI output from the results directory:
// the assertion results that feed notifications and the raw report files
// that feed gist archiving. Grouping preserves the file order of results
// so rendered sections match the order audits ran in.
package results
