/*
Package permission gates RPC methods on caller abilities.

The gate holds a static table mapping each method to the minimum
permission level it requires: read, write or admin. The actual
allow/deny decision is delegated to an AbilityChecker, so the rule
engine can live in the embedding application. A method absent from the
table requires admin; unknown surface area is closed by default.

MemberChecker is the built-in checker for deployments without an
external rule engine: workspace members may read and write, manage is
restricted to a configured admin list.

Denials are protocol.PermissionDenied values, code -32002, with no
detail about which rule failed.
*/
package permission
