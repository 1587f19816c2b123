package voxelize

import "fmt"

// Stage is a named point in a world's tick where systems run. Stages run
// in the order they were registered on the App; RunStage drives one stage
// through to completion (including flushing any commands it queued)
// before the scheduler moves to the next.
type Stage struct {
	Name string
}

var (
	Prelude    = Stage{Name: "Prelude"}
	PreUpdate  = Stage{Name: "PreUpdate"}
	Update     = Stage{Name: "Update"}
	PostUpdate = Stage{Name: "PostUpdate"}
)

// systemRegistration is the builder returned by System(fn); it collects
// the stage a system should run in before being handed to UseSystem.
type systemRegistration struct {
	system  System
	inStage Stage
}

// System starts a system registration, defaulting to the Update stage.
func System(system System) systemRegistration {
	return systemRegistration{system: system, inStage: Update}
}

func (r systemRegistration) InStage(s Stage) systemRegistration {
	r.inStage = s
	return r
}

// RunAlways exists for parity with the chained builder style used
// elsewhere; every registered system always runs when its stage runs, so
// this is a no-op terminator.
func (r systemRegistration) RunAlways() systemRegistration {
	return r
}

// UseSystem registers a system built with System(fn).InStage(...).
func (app *App) UseSystem(reg systemRegistration) *App {
	if _, ok := app.systems[reg.inStage.Name]; !ok {
		panic(fmt.Sprintf("voxelize: stage %q not registered", reg.inStage.Name))
	}
	app.systems[reg.inStage.Name] = append(app.systems[reg.inStage.Name], reg.system)
	return app
}
