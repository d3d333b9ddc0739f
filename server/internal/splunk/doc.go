// Package splunk turns Splunk saved-search alert webhooks into chat messages.
//
// Parse decodes the webhook body into a Payload. Splunk posts the first
// result row under "result"; host, source and _raw are read from there and
// fall back to top-level keys of the same name.
//
// Format renders a Payload into a FormattedAlert:
//
//	Splunk alert from saved search
//	[<search_name>](<results_link>)
//	host: <host>
//	source: <source>
//
//	raw: <_raw>
//
// Every absent field renders as "Missing <field>". The subject is the
// explicit topic when one is given, otherwise the search name cut to
// MaxSubjectLength runes with a trailing "...".
//
// Format is pure and safe for concurrent use. The only error this package
// returns is ErrMalformedPayload, from Parse and ParseBody.
package splunk
