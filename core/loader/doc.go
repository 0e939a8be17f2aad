// Package loader mounts optional HTTP features on the server.
//
// A feature is anything with a name, an on/off switch and a Load method
// that adds routes to a fiber.Router. The start command registers the
// gateway (object routes) and integrity (self checks) features:
//
//	m := loader.NewManager(log)
//	m.Register(gateway.NewFeature(engine, log, readOnly))
//	m.Register(integrity.NewFeature(engine, log, readOnly))
//	if err := m.LoadAll(app); err != nil {
//	    return err
//	}
//
// Features load in registration order. Names must be unique; disabled
// features are logged and skipped.
package loader
