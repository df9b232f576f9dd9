package repository

import (
	"time"

	"webgenie/internal/model"
)

// seededAt is the creation time recorded for the built-in templates.
var seededAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// SeedTemplates returns the built-in gallery every store starts with. IDs are
// fixed so seeding is idempotent.
func SeedTemplates() []model.Template {
	return []model.Template{
		{
			ID:           "4f6c2a52-0a3e-4c1b-9f9e-2d1f3b8a7c01",
			Name:         "Bakery",
			Description:  "A warm one-page site for a neighborhood bakery with a menu and opening hours.",
			ThumbnailURL: "/static/templates/bakery.svg",
			HTML: `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Crumb and Crust Bakery | Fresh Bread Daily</title>
  <meta name="description" content="Crumb and Crust is a family bakery baking sourdough, croissants and seasonal cakes fresh every morning.">
  <meta name="keywords" content="bakery, sourdough, croissants, cakes">
</head>
<body>
  <header>
    <h1>Crumb and Crust Bakery</h1>
    <nav><a href="#menu">Menu</a> <a href="#visit">Visit us</a></nav>
  </header>
  <main>
    <section id="menu">
      <h2>Baked this morning</h2>
      <img src="https://images.unsplash.com/photo-1509440159596-0249088772ff" alt="Loaves of sourdough bread on a shelf">
      <ul>
        <li>Country sourdough</li>
        <li>Butter croissants</li>
        <li>Seasonal fruit tart</li>
      </ul>
    </section>
    <section id="visit">
      <h2>Visit us</h2>
      <p>Open Tuesday to Sunday, 7am to 3pm. We bake in small batches, so come early for the best choice.</p>
    </section>
  </main>
  <footer><p>Crumb and Crust Bakery</p></footer>
</body>
</html>`,
			CSS: `body { font-family: Georgia, serif; margin: 0; color: #3b2a1a; background: #fdf8f2; }
header { padding: 2rem; background: #f3e3cf; text-align: center; }
nav a { margin: 0 0.5rem; color: #8a4b1f; }
main { max-width: 48rem; margin: 0 auto; padding: 2rem; }
img { max-width: 100%; border-radius: 8px; }
footer { text-align: center; padding: 1rem; }`,
			CreatedAt: seededAt,
		},
		{
			ID:           "4f6c2a52-0a3e-4c1b-9f9e-2d1f3b8a7c02",
			Name:         "Landing Page",
			Description:  "A product landing page with a hero, three features and a call to action.",
			ThumbnailURL: "/static/templates/landing.svg",
			HTML: `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Orbit | Plan Your Team's Week in Minutes</title>
  <meta name="description" content="Orbit is a lightweight planner that turns your team's tasks into a clear weekly schedule in minutes.">
  <meta name="keywords" content="planner, team, schedule, productivity">
</head>
<body>
  <section class="hero">
    <h1>Plan your week in minutes</h1>
    <p>Orbit turns a messy task list into a schedule everyone can follow.</p>
    <a class="cta" href="#signup">Start free</a>
  </section>
  <section class="features">
    <h2>Why teams choose Orbit</h2>
    <div class="feature"><h3>Drag and drop</h3><p>Move work between days without meetings.</p></div>
    <div class="feature"><h3>Shared view</h3><p>Everyone sees the same plan in real time.</p></div>
    <div class="feature"><h3>Smart reminders</h3><p>Deadlines nudge the right person at the right time.</p></div>
    <img src="https://images.unsplash.com/photo-1551288049-bebda4e38f71" alt="Dashboard showing a weekly team schedule">
  </section>
  <section id="signup">
    <h2>Ready to try it?</h2>
    <a class="cta" href="#">Create your workspace</a>
  </section>
</body>
</html>`,
			CSS: `body { font-family: system-ui, sans-serif; margin: 0; color: #1f2937; }
.hero { padding: 5rem 2rem; text-align: center; background: linear-gradient(135deg, #4f46e5, #06b6d4); color: #fff; }
.cta { display: inline-block; padding: 0.75rem 1.5rem; border-radius: 999px; background: #fff; color: #4f46e5; text-decoration: none; }
.features { max-width: 60rem; margin: 0 auto; padding: 3rem 2rem; display: grid; gap: 1.5rem; grid-template-columns: repeat(auto-fit, minmax(14rem, 1fr)); }
.features h2, .features img { grid-column: 1 / -1; }
.features img { max-width: 100%; }
#signup { text-align: center; padding: 3rem 2rem; background: #eef2ff; }`,
			CreatedAt: seededAt,
		},
		{
			ID:           "4f6c2a52-0a3e-4c1b-9f9e-2d1f3b8a7c03",
			Name:         "Portfolio",
			Description:  "A minimal portfolio for a designer or developer with projects and a contact section.",
			ThumbnailURL: "/static/templates/portfolio.svg",
			HTML: `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Sam Rivera | Product Designer Portfolio</title>
  <meta name="description" content="Selected work by Sam Rivera, a product designer crafting clear interfaces for health and finance apps.">
  <meta name="keywords" content="portfolio, product design, ux, ui">
</head>
<body>
  <header>
    <h1>Sam Rivera</h1>
    <p>Product designer making complicated things feel simple.</p>
  </header>
  <main>
    <h2>Selected work</h2>
    <article>
      <img src="https://images.unsplash.com/photo-1559028012-481c04fa702d" alt="Mobile banking app screens">
      <h3>Pocket Bank</h3>
      <p>Redesigned onboarding for a mobile bank and halved drop-off.</p>
    </article>
    <article>
      <img src="https://images.unsplash.com/photo-1576091160550-2173dba999ef" alt="Clinic appointment booking interface">
      <h3>Clinic Booking</h3>
      <p>Built a booking flow patients finish in under a minute.</p>
    </article>
    <h2>Contact</h2>
    <p><a href="mailto:sam@example.com">sam@example.com</a></p>
  </main>
</body>
</html>`,
			CSS: `body { font-family: "Helvetica Neue", Arial, sans-serif; margin: 0; color: #111; }
header { padding: 4rem 2rem 2rem; max-width: 50rem; margin: 0 auto; }
main { max-width: 50rem; margin: 0 auto; padding: 0 2rem 4rem; }
article { margin-bottom: 2rem; }
article img { width: 100%; border-radius: 4px; }
a { color: #0a66c2; }`,
			CreatedAt: seededAt,
		},
	}
}
