package testutil

// ValveStructured is a structured bore with one valve loop and variables.
// Resolved with the valve released it equals ValveCanonicalOpen, engaged it
// equals ValveCanonicalPressed.
const ValveStructured = `# one valve horn
mouth = 8.5 / 2
bore_r = 5.75
share = 0
MAIN
  mouth, bore_r, 90, mouthpipe
  bore_r, bore_r, 300, tuning slide
  BRANCH, valve1, share
  bore_r, bore_r, 25, valve bypass
  MERGE, valve1
  INSERT, bell
  OPEN_END
END_MAIN

GROUP, valve1
  bore_r, bore_r, 10, valve in
  bore_r, bore_r, 140, valve loop
  bore_r, bore_r, 10, valve out
END_GROUP

GROUP, bell
  bore_r, 9, 350
  9, 20, 180
  20, 60, 70, flare
END_GROUP
`

// ValveCanonicalOpen is ValveStructured with the valve released.
const ValveCanonicalOpen = `# one valve horn, valve released
4.25,5.75,90,mouthpipe
5.75,5.75,300,tuning slide
5.75,5.75,25,valve bypass
5.75,9,350
9,20,180
20,60,70,flare
OPEN_END
`

// ValveCanonicalPressed is ValveStructured with the valve engaged.
const ValveCanonicalPressed = `# one valve horn, valve engaged
4.25,5.75,90,mouthpipe
5.75,5.75,300,tuning slide
5.75,5.75,10,valve in
5.75,5.75,140,valve loop
5.75,5.75,10,valve out
5.75,9,350
9,20,180
20,60,70,flare
OPEN_END
`
