// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package app assembles the Paralympics site.

	a, err := app.New(cfg, app.WithLogger(logger))
	if err != nil {
		// *cliparse.ConfigurationError, *db.SchemaError or *seed.DataLoadError
	}
	defer a.Close()
	http.ListenAndServe(addr, a.Handler)

New runs these startup steps in order, each completing before the next:

 1. Validate the configuration profile
 2. Open the database
 3. Mount the dashboard and load page templates
 4. Create the CSRF guard, session store, login manager and photo upload set
 5. Create the schema, then rebuild the region and medals tables from CSV
    when SeedOnStartup is set
 6. Build the router, with the dashboard routes wrapped by the login guard

Any failure aborts startup. Resources opened by earlier steps are released
and no App is returned.
*/
package app
