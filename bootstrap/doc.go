// Package bootstrap runs a service through its lifecycle: config defaults
// and validation, logger setup, component start in registration order,
// configure callbacks that wire services onto the running infrastructure,
// and graceful shutdown on SIGINT or SIGTERM.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponent(database.NewComponent(cfg.Database, app.Logger))
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*Config]) error {
//	    // build services from started components
//	    return nil
//	})
//	err = app.Run(ctx)
package bootstrap
