package ledger

// OpKind names a ledger mutation.
type OpKind string

// Ledger operations.
const (
	OpArrival              OpKind = "arrival"
	OpBodyScanned          OpKind = "body_scanned"
	OpSignalsDiscovered    OpKind = "signals_discovered"
	OpSurfaceScanCompleted OpKind = "surface_scan_completed"
	OpOrganicScanned       OpKind = "organic_scanned"
)

// Op is a classified journal event ready to be applied.
type Op interface {
	Kind() OpKind
}

// Arrival enters a system, either on game load or after a jump.
type Arrival struct {
	SystemName    string
	StarClass     string
	SystemAddress int64
	Jump          bool // arrived through a hyperspace jump
}

// BodyScanned carries a scan payload. The ledger marks it FSS scanned.
type BodyScanned struct {
	Body Body
}

// SignalsDiscovered reports signal counts and genera found on a body.
type SignalsDiscovered struct {
	BodyName string
	BodyID   int
	Signals  Signals
	Genera   []string
}

// SurfaceScanCompleted reports a finished surface mapping.
type SurfaceScanCompleted struct {
	BodyName string
}

// OrganicScanned reports a genetic sample. The journal identifies the body
// by id, so BodyName may be empty.
type OrganicScanned struct {
	BodyName string
	BodyID   int
	Genus    string
}

func (Arrival) Kind() OpKind              { return OpArrival }
func (BodyScanned) Kind() OpKind          { return OpBodyScanned }
func (SignalsDiscovered) Kind() OpKind    { return OpSignalsDiscovered }
func (SurfaceScanCompleted) Kind() OpKind { return OpSurfaceScanCompleted }
func (OrganicScanned) Kind() OpKind       { return OpOrganicScanned }
