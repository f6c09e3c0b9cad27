// Package vikor implements the VIKOR compromise ranking method.
//
// Each criterion column is min-max scaled by direction (benefit or cost),
// multiplied by its weight, and aggregated per alternative into the group
// utility S (sum) and the individual regret R (max). Q blends the rescaled
// S and R with the compromise weight v; lower Q ranks better.
package vikor
