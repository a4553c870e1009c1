// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// HomepageRecentPosts is how many posts the homepage aggregate carries.
const HomepageRecentPosts = 6

// Homepage is the cached aggregate behind the landing page.
type Homepage struct {
	Settings    SiteSettings  `json:"settings"`
	RecentPosts []PostPreview `json:"recentPosts"`
	Categories  []Category    `json:"categories"`
	Tags        []TagCount    `json:"tags"`
}

// DashboardStats backs the admin dashboard.
type DashboardStats struct {
	Posts          int       `json:"posts"`
	Users          int       `json:"users"`
	Comments       int       `json:"comments"`
	RecentComments []Comment `json:"recentComments"`
}
