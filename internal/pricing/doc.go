/*
Pricing holds the fair-value estimators used by the order generators.

# Estimators
  - fixed: a known equilibrium price
  - ema: exponential moving average of the mid-price
  - black-scholes: call value of an option on the underlying mid-price
  - basket: linear combination of component prices plus an offset
  - delta: relative mid-price change of two products over a lookback

Stateless estimators are pure functions of their inputs. EMA and MidHistory
carry state across ticks and are owned by the dispatcher's StrategyState.
*/
package pricing
