package figma

// Node types the selector cares about.
const (
	NodeTypeDocument = "DOCUMENT"
	NodeTypeCanvas   = "CANVAS"
)

// File is the response of GET /files/{key}.
type File struct {
	Name         string `json:"name"`
	LastModified string `json:"lastModified"`
	Version      string `json:"version"`
	Document     Node   `json:"document"`
}

// Node is one node of the remote document tree. It is owned by the remote
// service and never modified here.
type Node struct {
	ID                  string       `json:"id"`
	Type                string       `json:"type"`
	Name                string       `json:"name"`
	Children            []Node       `json:"children,omitempty"`
	AbsoluteBoundingBox *BoundingBox `json:"absoluteBoundingBox,omitempty"`
}

// BoundingBox is a node's absolute bounding box.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// imagesResponse is the response of GET /images/{key}. Nodes the renderer
// declined come back as null.
type imagesResponse struct {
	Err    *string            `json:"err"`
	Images map[string]*string `json:"images"`
}
