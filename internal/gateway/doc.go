// Package gateway implementa as rotas do API gateway: /health, /ready,
// /api/status e /, mais o fallback 404 e a resposta 500.
//
// Os handlers são funções puras da request e do relógio injetado; o único
// estado é o instante de início usado no uptime.
package gateway
