// Package domain define contratos e tipos do rate limit e do limite de
// concorrência do gateway.
//
// Não depende de net/http nem de implementações concretas, o que permite
// testar as regras de aplicação com stores falsos.
package domain
