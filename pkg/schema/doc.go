/*
Package schema publishes the bridge's method catalog.

The catalog describes every RPC method: name, category, description and
parameter schemas. Two projections are served publicly so machine
clients can discover the surface without credentials:

  - ToolManifest: one tool per method with a JSON-schema input shape,
    consumed by AI assistants registering the bridge as a toolset
  - OpenAPIDocument: an OpenAPI 3.0 description mapping each method to
    a documentation path under /rpc/{method}

The catalog is documentation, not enforcement. Handlers validate their
own parameters; the dispatcher routes by its handler tables.
*/
package schema
