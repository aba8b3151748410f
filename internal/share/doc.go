// Package share converts queries to and from shareable URL parameters.
//
// Parameters:
//
//	search=<term>         attributes.name textContains <term>
//	filter_<key>=<value>  attributes.<key> textContains <value>
//	sort=<field>          sort field path
//	order=asc|desc        sort direction, ascending when omitted
//	offset=<n>, limit=<n> pagination window
//	hidden=<a,b>          hidden columns, repeated or comma separated
//
// Terms are matched literally: regexp metacharacters are quoted before they
// become textContains patterns, and unquoted again on encode.
package share
