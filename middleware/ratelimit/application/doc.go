// Package application contém os casos de uso do rate limit e do limite de
// concorrência.
//
// Depende apenas de domain. Service.Decide(ctx, key) retorna uma Decision
// (allow/deny, quota restante e retry-after).
package application
