package voxelize

import (
	"fmt"
	"reflect"
)

// System is any function whose parameters are resolved by reflection
// against the running App: a *Commands parameter receives the command
// buffer, any other pointer-to-struct parameter is resolved against a
// registered resource of that type.
type System any

// Module bundles resource registration and system registration for one
// concern (time, logging, the spatial grid). Pipeline advance and physics
// are not modules; World.Tick runs them directly.
type Module interface {
	Install(app *App, commands *Commands)
}

// App owns one world's entity store, its registered resources, and the
// systems scheduled against each stage. Each world in the server owns one
// App; there is no shared global app instance.
type App struct {
	ecs       *Ecs
	resources map[reflect.Type]any

	stages  []Stage
	systems map[string][]System

	pendingAdditions    []pendingAdd
	pendingCompAdds     []pendingCompAdd
	pendingCompRemovals []pendingCompRemoval
	pendingRemovals     []EntityId
}

type pendingAdd struct {
	eid        EntityId
	components []any
}

type pendingCompAdd struct {
	eid        EntityId
	components []any
}

type pendingCompRemoval struct {
	eid        EntityId
	components []any
}

// NewApp returns an App with the four simulation stages registered and no
// modules installed yet.
func NewApp() *App {
	ecs := MakeEcs()
	app := &App{
		ecs:       &ecs,
		resources: make(map[reflect.Type]any),
		systems:   make(map[string][]System),
	}
	for _, s := range []Stage{Prelude, PreUpdate, Update, PostUpdate} {
		app.stages = append(app.stages, s)
		app.systems[s.Name] = nil
	}
	return app
}

// UseModules installs each module in order, giving every module a chance
// to register resources and systems before any tick runs.
func (app *App) UseModules(modules ...Module) *App {
	cmd := app.Commands()
	for _, m := range modules {
		m.Install(app, cmd)
	}
	app.FlushCommands()
	return app
}

func (app *App) Commands() *Commands {
	return &Commands{app: app}
}

// RunStage executes every system registered to stage, in registration
// order, then applies any commands those systems queued.
func (app *App) RunStage(stage Stage) {
	for _, system := range app.systems[stage.Name] {
		app.callSystem(system)
	}
	app.FlushCommands()
}

func (app *App) addResources(resources ...any) *App {
	for _, resource := range resources {
		resourceType := reflect.TypeOf(resource)
		if resourceType.Kind() == reflect.Pointer {
			resourceType = resourceType.Elem()
		}
		if _, ok := app.resources[resourceType]; ok {
			panic(fmt.Sprintf("%s is already in resources", resourceType))
		}
		app.resources[resourceType] = resource
	}
	return app
}

func (app *App) callSystem(system System) {
	app.callSystemInternal(system)
}

var typeOfCommands = reflect.TypeOf(Commands{})

func (app *App) callSystemInternal(system System) {
	systemType := reflect.TypeOf(system)
	systemValue := reflect.ValueOf(system)

	args := make([]reflect.Value, systemType.NumIn())

	for i := 0; i < systemType.NumIn(); i++ {
		argType := systemType.In(i)
		underlyingType := argType
		if argType.Kind() == reflect.Pointer {
			underlyingType = argType.Elem()
		}

		if underlyingType == typeOfCommands {
			args[i] = reflect.ValueOf(app.Commands())
		} else if resource, argIsResource := app.resources[underlyingType]; argIsResource {
			args[i] = reflect.ValueOf(resource)
		} else {
			panic(fmt.Sprintf("voxelize: unable to resolve system dependency %s", argType))
		}
	}
	systemValue.Call(args)
}

// FlushCommands applies every queued structural change (entity/component
// add/remove) to the ECS. Systems never mutate the archetype store
// directly; this keeps component moves out of the middle of a query's
// Map callback.
func (app *App) FlushCommands() {
	for _, add := range app.pendingAdditions {
		app.ecs.insertEntity(add.eid, add.components...)
	}
	app.pendingAdditions = nil

	for _, add := range app.pendingCompAdds {
		app.ecs.addComponents(add.eid, add.components...)
	}
	app.pendingCompAdds = nil

	for _, rem := range app.pendingCompRemovals {
		app.ecs.removeComponents(rem.eid, rem.components...)
	}
	app.pendingCompRemovals = nil

	for _, eid := range app.pendingRemovals {
		app.ecs.removeEntity(eid)
	}
	app.pendingRemovals = nil
}
