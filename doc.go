// Package cookierinse cleans and profiles browser cookie exports.
//
// It ingests a Netscape-format cookies.txt (tab-separated rows), keeps only
// authentication cookies, and builds a profile of the store: per-site cookie
// counts, detected services and auth mechanisms, a privacy score, and a
// footprint score with a qualitative level. Cookie stores can also be
// exported straight from local Chromium-family and Firefox profiles.
//
// This is intended for local tooling. Browser export reads local browser
// state, may trigger keychain/keyring prompts, and should not be used in
// server contexts.
package cookierinse
