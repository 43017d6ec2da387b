// Package hud models the game-side session that feeds the HUD view.
//
// A Session receives host events (view ready, game loaded, combat, equip,
// menus, pause) and turns them into update requests on its Dispatcher. It
// also implements dispatch.Host: Publish builds the JSON payload and
// records it in the state store as delivered.
//
// Event rules:
//
//   - GameLoaded enables the dispatcher, shows the view, pushes the saved
//     settings and requests one forced sync.
//   - MainMenuOpened disables the dispatcher, which drops pending work.
//   - Combat changes, combat ticks and effect changes request throttled
//     updates; combat also switches the throttle to the urgent interval.
//   - Equip and the heartbeat request forced updates.
//   - Opening a menu that hides the HUD, or any menu while paused, hides
//     the view. Closing the last hiding menu while running shows it again
//     and forces an update. Closing the level-up menu schedules a recheck.
//   - Menu events are ignored until the view is ready.
//
// Publish refuses while the view is not ready or no game is loaded, and
// while paused it schedules a recheck instead of sending.
package hud
