package mesh

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// gmshElementNodes maps the Gmsh 2.2 ASCII element-type code to the element
// type and node count this reader understands. Gmsh defines dozens of
// higher-order and 0D/1D/2D codes; only the first-order 3D cell types the
// importer consumes are listed here - everything else is skipped.
var gmshElementNodes = map[int]struct {
	etype    ElementType
	numNodes int
}{
	4: {Tet, 4},
	5: {Hex, 8},
	6: {Prism, 6},
	7: {Pyramid, 5},
}

// ReadGmsh reads a Gmsh ASCII 2.2 mesh file ($MeshFormat/$Nodes/$Elements
// sections). Binary-encoded files and the 4.x section layout are not
// supported.
func ReadGmsh(filename string) (*Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	mesh := NewMesh()
	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "$MeshFormat":
			if !scanner.Scan() {
				return nil, fmt.Errorf("gmsh: truncated $MeshFormat section")
			}
			fields := strings.Fields(scanner.Text())
			if len(fields) < 2 {
				return nil, fmt.Errorf("gmsh: malformed $MeshFormat line %q", scanner.Text())
			}
			if !strings.HasPrefix(fields[0], "2") {
				return nil, fmt.Errorf("gmsh: unsupported format version %q, only 2.x ASCII is supported", fields[0])
			}
			if fields[1] != "0" {
				return nil, fmt.Errorf("gmsh: binary mesh files are not supported")
			}

		case "$PhysicalNames":
			if err := skipGmshSection(scanner, "$EndPhysicalNames"); err != nil {
				return nil, err
			}

		case "$Nodes":
			if err := readGmshNodes(scanner, mesh); err != nil {
				return nil, err
			}

		case "$Elements":
			if err := readGmshElements(scanner, mesh); err != nil {
				return nil, err
			}
		}
	}

	mesh.NumVertices = len(mesh.Vertices)
	mesh.NumElements = len(mesh.Elements)
	mesh.BuildConnectivity()

	return mesh, nil
}

// skipGmshSection discards lines up to and including endTag, for sections
// (physical names, periodicity, ...) this reader doesn't interpret.
func skipGmshSection(scanner *bufio.Scanner, endTag string) error {
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == endTag {
			return nil
		}
	}
	return fmt.Errorf("gmsh: missing %s", endTag)
}

func readGmshNodes(scanner *bufio.Scanner, mesh *Mesh) error {
	if !scanner.Scan() {
		return fmt.Errorf("gmsh: truncated $Nodes section")
	}
	numNodes, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return fmt.Errorf("gmsh: bad node count %q: %w", scanner.Text(), err)
	}

	mesh.Vertices = make([][]float64, numNodes)
	for i := 0; i < numNodes; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("gmsh: expected %d nodes, file ended after %d", numNodes, i)
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 {
			return fmt.Errorf("gmsh: malformed node line %q", scanner.Text())
		}
		id, _ := strconv.Atoi(fields[0])
		x, _ := strconv.ParseFloat(fields[1], 64)
		y, _ := strconv.ParseFloat(fields[2], 64)
		z, _ := strconv.ParseFloat(fields[3], 64)
		if id < 1 || id > numNodes {
			return fmt.Errorf("gmsh: node id %d out of range [1,%d]", id, numNodes)
		}
		mesh.Vertices[id-1] = []float64{x, y, z}
	}

	if !scanner.Scan() || strings.TrimSpace(scanner.Text()) != "$EndNodes" {
		return fmt.Errorf("gmsh: missing $EndNodes")
	}
	return nil
}

func readGmshElements(scanner *bufio.Scanner, mesh *Mesh) error {
	if !scanner.Scan() {
		return fmt.Errorf("gmsh: truncated $Elements section")
	}
	numElements, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return fmt.Errorf("gmsh: bad element count %q: %w", scanner.Text(), err)
	}

	mesh.Elements = make([][]int, 0, numElements)
	mesh.ElementTypes = make([]ElementType, 0, numElements)
	mesh.ElementTags = make([]int, 0, numElements)

	for i := 0; i < numElements; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("gmsh: expected %d elements, file ended after %d", numElements, i)
		}
		fields := strings.Fields(scanner.Text())
		// elem-id elem-type num-tags tag1 ... node1 node2 ...
		if len(fields) < 3 {
			return fmt.Errorf("gmsh: malformed element line %q", scanner.Text())
		}
		gmshType, _ := strconv.Atoi(fields[1])
		numTags, _ := strconv.Atoi(fields[2])

		def, ok := gmshElementNodes[gmshType]
		if !ok {
			// Not a first-order 3D cell (point, line, triangle, quad, or
			// higher-order variant) - not part of the importer's domain.
			continue
		}
		nodeStart := 3 + numTags
		if len(fields) < nodeStart+def.numNodes {
			return fmt.Errorf("gmsh: element line %q too short for %d nodes", scanner.Text(), def.numNodes)
		}

		tag := 0
		if numTags > 0 {
			tag, _ = strconv.Atoi(fields[3])
		}

		verts := make([]int, def.numNodes)
		for j := 0; j < def.numNodes; j++ {
			v, _ := strconv.Atoi(fields[nodeStart+j])
			verts[j] = v - 1
		}

		mesh.Elements = append(mesh.Elements, verts)
		mesh.ElementTypes = append(mesh.ElementTypes, def.etype)
		mesh.ElementTags = append(mesh.ElementTags, tag)
	}

	if !scanner.Scan() || strings.TrimSpace(scanner.Text()) != "$EndElements" {
		return fmt.Errorf("gmsh: missing $EndElements")
	}
	return nil
}
