// Package forecast fits an additive Holt-Winters model to a daily series and
// projects it over a calendar window.
//
// Days of the window that fall inside the observed history receive the
// model's one-step-ahead fitted value; later days receive forecasts up to the
// configured horizon past the last observation.
package forecast
