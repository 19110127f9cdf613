// Package ratelimit fornece os middlewares net/http de rate limit e de limite
// de concorrência do gateway.
//
// Camadas:
//
//   - domain: contratos e tipos (sem net/http)
//   - application: decisão allow/deny e acquire com timeout
//   - infra: janela fixa (memória/Redis), token bucket, semáforo, estatísticas
//   - ratelimit (este pacote): extração de chave e tradução para status/headers
//
// Fluxo:
//
//  1. Extrai a chave do cliente (header, X-Forwarded-For ou RemoteAddr)
//  2. Consome uma unidade do limite via application.Service
//  3. Se bloqueado, responde 429 em text/plain com Retry-After
//  4. Se permitido, chama o próximo handler
//
// O padrão do gateway é janela fixa de 100 requests por 15 minutos por IP.
package ratelimit
