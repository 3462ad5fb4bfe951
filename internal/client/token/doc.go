// Package token decodes the claims carried by a platform access token.
//
// The decoder never verifies signatures: the API server is the authority that
// accepts or rejects a token, and the decoded claims only drive client-side
// decisions such as which views to offer and when to renew the session.
//
// Decode is total. Any input that is not a well-formed three-segment token
// with a base64url JSON object payload yields (nil, false); it never panics
// and never returns an error across its boundary.
package token
