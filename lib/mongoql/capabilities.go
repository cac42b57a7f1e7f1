package mongoql

// Capability names one class of statement the engine may be allowed to
// translate. The zero value of Capabilities denies everything, so a
// caller must opt in to each class explicitly.
type Capability string

const (
	CapabilitySelect      Capability = "select"
	CapabilityInsert      Capability = "insert"
	CapabilityUpdate      Capability = "update"
	CapabilityDelete      Capability = "delete"
	CapabilityCreateTable Capability = "create_table"
	CapabilityDropTable   Capability = "drop_table"
)

// Capabilities gates which statement kinds Translate will accept.
type Capabilities struct {
	Select      bool `yaml:"select" json:"select"`
	Insert      bool `yaml:"insert" json:"insert"`
	Update      bool `yaml:"update" json:"update"`
	Delete      bool `yaml:"delete" json:"delete"`
	CreateTable bool `yaml:"create_table" json:"create_table"`
	DropTable   bool `yaml:"drop_table" json:"drop_table"`
}

// AllowAll returns capabilities with every statement class enabled.
func AllowAll() Capabilities {
	return Capabilities{
		Select:      true,
		Insert:      true,
		Update:      true,
		Delete:      true,
		CreateTable: true,
		DropTable:   true,
	}
}

// ReadOnly returns capabilities that admit SELECT statements only.
func ReadOnly() Capabilities {
	return Capabilities{Select: true}
}

// Enabled reports whether the named capability is set.
func (c Capabilities) Enabled(capability Capability) bool {
	switch capability {
	case CapabilitySelect:
		return c.Select
	case CapabilityInsert:
		return c.Insert
	case CapabilityUpdate:
		return c.Update
	case CapabilityDelete:
		return c.Delete
	case CapabilityCreateTable:
		return c.CreateTable
	case CapabilityDropTable:
		return c.DropTable
	default:
		return false
	}
}

// List returns the names of all enabled capabilities in a fixed order.
func (c Capabilities) List() []Capability {
	all := []Capability{
		CapabilitySelect,
		CapabilityInsert,
		CapabilityUpdate,
		CapabilityDelete,
		CapabilityCreateTable,
		CapabilityDropTable,
	}
	enabled := make([]Capability, 0, len(all))
	for _, capability := range all {
		if c.Enabled(capability) {
			enabled = append(enabled, capability)
		}
	}
	return enabled
}

// required maps a statement kind to the capability that admits it.
func required(kind Kind) Capability {
	switch kind {
	case KindInsert:
		return CapabilityInsert
	case KindUpdate:
		return CapabilityUpdate
	case KindDelete:
		return CapabilityDelete
	case KindCreate:
		return CapabilityCreateTable
	case KindDrop:
		return CapabilityDropTable
	default:
		return CapabilitySelect
	}
}

// check returns a PermissionError when the statement kind is not admitted.
func (c Capabilities) check(kind Kind) error {
	capability := required(kind)
	if !c.Enabled(capability) {
		return &PermissionError{Capability: capability}
	}
	return nil
}
