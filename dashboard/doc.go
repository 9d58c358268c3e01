// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package dashboard is the medals explorer mounted under /dashboard/.

The page lets a user pick a grouping column and a numeric column of the
medals table and draws the grouped sums as a bar chart. Data comes from
JSON endpoints under /dashboard/_data/.

# Routes

	GET /dashboard/                          page
	GET /dashboard/assets/*                  embedded CSS and JS
	GET /dashboard/_data/columns             [{name, numeric}]
	GET /dashboard/_data/medals?by=&value=   {by, value, points: [{label, value}]}
	GET /dashboard/_data/regions             [{id, region}]
	*   /dashboard/*                         page for any other GET, 405 otherwise

Routes returns this list. The last entry has no method and matches every
path and method not claimed above, so a guard wrapped around the list
covers the whole prefix. The caller is expected to wrap it with a login
guard (auth.ProtectRoutes) before registering it; the dashboard does no
authentication of its own.
*/
package dashboard
