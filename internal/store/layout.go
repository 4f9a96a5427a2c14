// Package store implements §4.G's TypedBlockStore adapter and §6's
// on-disk container layout. No HDF5 binding exists anywhere in the
// retrieval pack, so the hierarchical-container shape of §6 is realized
// concretely as a directory of fixed-size binary record files plus a
// YAML sidecar attribute table — the §6 interface is what the spec
// actually constrains, not a particular wire format (documented and
// justified in DESIGN.md).
package store

// Link names the datasets and groups of §6's on-disk container. Kept as a
// single immutable table of labels — §9's resolution of the "global
// constant link strings" design note: the source's friend-accessed H5
// link strings become layout metadata here, not a behavioural dependency
// of any single file.
type Link string

const (
	LinkNodesXYZ        Link = "Nodes/XYZ"
	LinkFacesEntityID   Link = "Faces/EntityID"
	LinkFacesFaceLRCell Link = "Faces/FaceLRCell"
	LinkCacheCellFace   Link = "Cache/cellFace"
	LinkCacheCellCell   Link = "Cache/cellCell"
)

// file names inside a store directory.
const (
	attributesFile  = "attributes.yaml"
	nodesXYZFile    = "nodes.xyz.bin"
	facesEntityFile = "faces.entityid.bin"
	facesFaceLRFile = "faces.facelrcell.bin"
	patchIndexFile  = "patches/index.yaml"
	patchInfoFmt    = "patches/%s.patchinfo.bin"
	cacheCellFace   = "cache/cellface.bin"
	cacheCellCell   = "cache/cellcell.bin"
)

// linkFile maps a Link to the file inside the store directory that backs
// it. Unknown links are a programmer error, not a runtime one — every
// link the adapter exposes is one of the constants above.
func linkFile(link Link) (string, bool) {
	switch link {
	case LinkNodesXYZ:
		return nodesXYZFile, true
	case LinkFacesEntityID:
		return facesEntityFile, true
	case LinkFacesFaceLRCell:
		return facesFaceLRFile, true
	case LinkCacheCellFace:
		return cacheCellFace, true
	case LinkCacheCellCell:
		return cacheCellCell, true
	default:
		return "", false
	}
}
