// Package resolve provides the facade consumers hold for a guarded module.
//
// # Overview
//
// A [Facade] defers the decision between the real module and its shim until
// the first member access. Resolution is attempted through a [Resolver]
// (typically the process-wide [Registry] of compiled-in providers):
//
//   - the module loads → the facade permanently delegates to the real object
//   - the resolver reports [ErrNotFound] → the facade permanently delegates
//     to a shim tree reconstructed from the module's summary document
//   - the resolver fails any other way → the failure propagates unchanged;
//     a present-but-broken dependency is never masked by a shim
//
// The resolved state is terminal. Member listings before resolution are a
// best-effort preview taken from the summary's root node.
//
// # Explicit submodules
//
// Some hierarchies keep sub-trees invisible until they are loaded by an
// explicit, separate step. The facade carries those dotted paths in a
// [PathTrie]; before resolution, attribute access along a known path yields
// intermediate namespaces, and reaching a registered path force-loads
// exactly that sub-hierarchy before the accumulated chain resolves. Once the
// facade has resolved, the trie is bypassed entirely.
package resolve
