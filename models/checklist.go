package models

// Service types determine which sub-step checklist an order gets.
// "fabrication" is an accepted alias for "production".
const (
	ServiceProduction   = "production"
	ServiceFabrication  = "fabrication"
	ServiceAdjustment   = "adjustment"
	ServiceReadjustment = "readjustment"
	ServiceJacket       = "jacket"
	ServiceTrousers     = "trousers"
)

// Sub-step names used across the checklists
const (
	StepCut               = "Cut"
	StepTrouserSewing     = "Trouser Sewing"
	StepJacketSewing      = "Jacket Sewing"
	StepButtonholing      = "Buttonholing"
	StepBarTacking        = "Bar Tacking"
	StepFinishing         = "Finishing"
	StepFinalization      = "Finalization"
	StepMeasurement       = "Measurement"
	StepTrouserAdjustment = "Trouser Adjustment"
	StepJacketAdjustment  = "Jacket Adjustment"
	StepReadjustment      = "Readjustment"
)

var productionChecklist = []string{
	StepCut,
	StepTrouserSewing,
	StepJacketSewing,
	StepButtonholing,
	StepBarTacking,
	StepFinishing,
	StepFinalization,
}

var checklists = map[string][]string{
	ServiceProduction:  productionChecklist,
	ServiceFabrication: productionChecklist,
	ServiceAdjustment: {
		StepMeasurement,
		StepTrouserAdjustment,
		StepJacketAdjustment,
	},
	ServiceReadjustment: {
		StepReadjustment,
	},
	ServiceJacket: {
		StepCut,
		StepJacketSewing,
		StepButtonholing,
		StepFinishing,
		StepFinalization,
	},
	ServiceTrousers: {
		StepCut,
		StepTrouserSewing,
		StepBarTacking,
		StepFinishing,
		StepFinalization,
	},
}

// ChecklistFor returns the ordered list of sub-step names for a service type.
// Unknown types fall back to the production checklist, so the result is
// always non-empty. Callers get a copy and may mutate it freely.
func ChecklistFor(serviceType string) []string {
	steps, ok := checklists[serviceType]
	if !ok {
		steps = productionChecklist
	}

	out := make([]string, len(steps))
	copy(out, steps)
	return out
}

// ServiceTypes returns the recognized service type names, in the order they
// should appear in selection UIs. The fabrication alias is not listed.
func ServiceTypes() []string {
	return []string{
		ServiceProduction,
		ServiceAdjustment,
		ServiceReadjustment,
		ServiceJacket,
		ServiceTrousers,
	}
}
